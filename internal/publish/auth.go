package publish

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Auth selects how Push authenticates. Type is one of none, token, basic or ssh.
type Auth struct {
	Type     string
	Username string
	Password string
	Token    string
	KeyPath  string
}

// Method builds the go-git auth method for a.
func (a Auth) Method() (transport.AuthMethod, error) {
	switch a.Type {
	case "none", "":
		return nil, nil

	case "ssh":
		keyPath := a.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		keys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, fmt.Errorf("load SSH key from %s: %w", keyPath, err)
		}
		return keys, nil

	case "token":
		if a.Token == "" {
			return nil, fmt.Errorf("token authentication requires a token")
		}
		return &http.BasicAuth{Username: "token", Password: a.Token}, nil

	case "basic":
		if a.Username == "" || a.Password == "" {
			return nil, fmt.Errorf("basic authentication requires username and password")
		}
		return &http.BasicAuth{Username: a.Username, Password: a.Password}, nil

	default:
		return nil, fmt.Errorf("unsupported authentication type: %s", a.Type)
	}
}
