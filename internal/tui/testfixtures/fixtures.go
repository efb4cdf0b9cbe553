package testfixtures

import (
	"time"

	"github.com/mark3labs/trove/internal/trove"
)

// FixedTime is the creation time of every fixture command.
var FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// Commands returns a small set of stored commands across two namespaces.
func Commands() []*trove.Command {
	mk := func(ns, name, command, desc string, tags ...string) *trove.Command {
		return &trove.Command{
			Name:        name,
			Namespace:   ns,
			Command:     command,
			Description: desc,
			Tags:        tags,
			CreatedAt:   FixedTime,
			UpdatedAt:   FixedTime,
		}
	}
	return []*trove.Command{
		mk("git", "commit", "git commit -m #message!", "Commit staged changes", "vcs"),
		mk("git", "status", "git status", ""),
		mk("default", "copy", "cp #src! #dst!", "Copy a file"),
		mk("docker", "run", "docker run -it #image! sh", "Run a shell in a container", "container"),
	}
}
