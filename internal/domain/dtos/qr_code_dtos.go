package dtos

type IssueQRCodeRequest struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

type SetQRCodeActiveRequest struct {
	Active *bool `json:"active"`
}
