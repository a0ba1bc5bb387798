package BlackListRepo

import "time"

func (r *BlackListRepo) SetNow(now func() time.Time) {
	r.now = now
}

func (r *BlackListRepo) Key(token string) string {
	return r.buildKey(token)
}
