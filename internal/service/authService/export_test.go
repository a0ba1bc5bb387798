package authService

import "commercial-file-service/internal/model/user"

func (s *AuthService) GenerateJWT(u *user.User) (string, error) {
	return s.generateJWT(u)
}
