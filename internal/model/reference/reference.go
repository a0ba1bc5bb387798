package reference

type Region struct {
	ID          int64  `json:"id"`
	RegionName  string `json:"region_name"`
	RegionCode  string `json:"region_code"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

type ChannelPartnerType struct {
	ID          int64  `json:"id"`
	TypeName    string `json:"type_name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}
