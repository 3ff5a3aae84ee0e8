package dto

// ThemeRequest replaces the global theme.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// ThemeResponse is the current global theme.
type ThemeResponse struct {
	Theme string `json:"theme"`
}
