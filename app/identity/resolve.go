package identity

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/ynhstate/ynhstate/app"
	"github.com/ynhstate/ynhstate/faults"
)

var (
	ErrMissingIdentity    = errors.New("missing identity")
	ErrIncoherentIdentity = errors.New("incoherent identity")
	ErrUnresolvableName   = errors.New("unresolvable name")
)

// packageSuffix is the YunoHost packaging convention for app repositories:
// the repository name is the app identifier followed by "_ynh".
const packageSuffix = "_ynh"

var scpLikePattern = regexp.MustCompile(`^[^/@]+@[^/:]+:`)

type ResolveInput struct {
	ID   string
	Name string
}

// Resolve derives the canonical app identity from a partial caller input: an
// explicit installation id, a catalog name, or a package source URL. It is a
// pure function; the host is never consulted.
func Resolve(input ResolveInput) (app.ID, error) {
	id := strings.TrimSpace(input.ID)
	name := strings.TrimSpace(input.Name)

	if id == "" && name == "" {
		return app.ID{}, faults.NewTypedError(faults.ValidationError,
			"either id or name is required", ErrMissingIdentity)
	}

	if id != "" {
		base, instance := SplitInstance(id)
		if name != "" {
			coherentWith := name
			if looksLikeSourceURL(name) {
				derived, err := identifierFromSourceURL(name)
				if err != nil {
					return app.ID{}, err
				}
				coherentWith = derived
			}
			if coherentWith != base {
				return app.ID{}, faults.NewTypedError(faults.ValidationError,
					fmt.Sprintf("id %q does not match name %q", id, name), ErrIncoherentIdentity)
			}
		}
		return app.ID{Name: id, BaseName: base, Instance: instance}, nil
	}

	if looksLikeSourceURL(name) {
		derived, err := identifierFromSourceURL(name)
		if err != nil {
			return app.ID{}, err
		}
		return app.ID{Name: derived, BaseName: derived}, nil
	}

	base, instance := SplitInstance(name)
	return app.ID{Name: name, BaseName: base, Instance: instance}, nil
}

// SplitInstance strips a trailing "__<positive integer>" multi-instance
// suffix. Anything that does not match the convention is part of the name.
func SplitInstance(name string) (string, int) {
	idx := strings.LastIndex(name, app.InstanceSeparator)
	if idx <= 0 {
		return name, 0
	}

	instance, err := strconv.Atoi(name[idx+len(app.InstanceSeparator):])
	if err != nil || instance <= 0 {
		return name, 0
	}
	return name[:idx], instance
}

func looksLikeSourceURL(name string) bool {
	return strings.Contains(name, "://") || scpLikePattern.MatchString(name)
}

// identifierFromSourceURL extracts the app identifier from a package source
// URL by the trailing "<identifier>_ynh" repository naming convention.
func identifierFromSourceURL(rawURL string) (string, error) {
	endpoint, err := transport.NewEndpoint(rawURL)
	if err != nil {
		return "", faults.NewTypedError(faults.ValidationError,
			fmt.Sprintf("cannot parse source url %q", rawURL), errors.Join(ErrUnresolvableName, err))
	}

	repo := path.Base(strings.TrimRight(endpoint.Path, "/"))
	repo = strings.TrimSuffix(repo, ".git")

	identifier := strings.TrimSuffix(repo, packageSuffix)
	if identifier == "" || identifier == repo {
		return "", faults.NewTypedError(faults.ValidationError,
			fmt.Sprintf("source url %q does not follow the %s naming convention", rawURL, "*"+packageSuffix),
			ErrUnresolvableName)
	}
	return identifier, nil
}
