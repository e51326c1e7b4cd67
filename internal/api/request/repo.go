package request

// CloneRepo is the body of POST /repos.
type CloneRepo struct {
	Name   string `json:"name" validate:"required,ident"`
	URL    string `json:"url" validate:"required,url|startswith=git@"`
	Branch string `json:"branch" validate:"omitempty,max=255"`
}
