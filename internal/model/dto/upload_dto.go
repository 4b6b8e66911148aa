package dto

// UploadLogoResponse Logo 上传结果
type UploadLogoResponse struct {
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}
