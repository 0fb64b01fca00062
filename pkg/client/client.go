package client

type Client struct {
	Id          int
	Name        string
	ContactName string
	Email       string
	// ProjectCount is read-only and filled in by the repository.
	ProjectCount int
}
