package request

type IssueTokensRequest struct {
	Identification string `json:"identification" validate:"required"`
}

type ReissueRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
