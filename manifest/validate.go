package manifest

import (
	"fmt"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/hashicorp/go-multierror"

	"github.com/Masterminds/semver/v3"
)

// Validate checks the well-formedness properties the manifest must hold:
// name, version and dependencies present and non-empty, every dependency a
// valid requirement specifier, license, authors and the Repository URL
// present. Findings across fields and dependencies are aggregated.
func (m *Manifest) Validate() error {
	var result *multierror.Error

	if err := m.validateStructure(); err != nil {
		result = multierror.Append(result, err)
	}

	for _, dep := range m.Project.Dependencies {
		if _, err := ParseRequirement(dep); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if m.Project.Version != "" {
		if _, err := semver.NewVersion(padVersion(m.Project.Version)); err != nil {
			result = multierror.Append(result,
				fmt.Errorf("project version %q: %w", m.Project.Version, err))
		}
	}

	if repo := m.Repository(); repo != "" {
		if err := validateRepositoryURL(repo); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func (m *Manifest) validateStructure() error {
	p := &m.Project
	return validation.ValidateStruct(m,
		validation.Field(&m.BuildSystem, validation.By(func(interface{}) error {
			return validation.ValidateStruct(&m.BuildSystem,
				validation.Field(&m.BuildSystem.Requires, validation.Required),
				validation.Field(&m.BuildSystem.BuildBackend, validation.Required),
			)
		})),
		validation.Field(&m.Project, validation.By(func(interface{}) error {
			return validation.ValidateStruct(p,
				validation.Field(&p.Name, validation.Required),
				validation.Field(&p.Version, validation.Required),
				validation.Field(&p.Dependencies, validation.Required, validation.Length(1, 0)),
				validation.Field(&p.License, validation.By(func(value interface{}) error {
					lic, ok := value.(License)
					if !ok {
						return validation.NewError("validation_invalid_type", "must be a License")
					}
					if strings.TrimSpace(lic.Text) == "" {
						return validation.NewError("validation_missing_license", "license text is required")
					}
					return nil
				})),
				validation.Field(&p.Authors,
					validation.Required,
					validation.Length(1, 0),
					validation.Each(validation.By(validateAuthor)),
				),
				validation.Field(&p.URLs, validation.By(func(value interface{}) error {
					urls, ok := value.(map[string]string)
					if !ok {
						return validation.NewError("validation_invalid_type", "must be a URL table")
					}
					if strings.TrimSpace(urls["Repository"]) == "" {
						return validation.NewError("validation_missing_repository", "Repository URL is required")
					}
					return nil
				})),
			)
		})),
	)
}

func validateAuthor(value interface{}) error {
	author, ok := value.(Author)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be an Author")
	}

	if strings.TrimSpace(author.Name) == "" {
		return validation.NewError("validation_missing_author_name", "author name is required")
	}

	if author.Email != "" {
		if err := is.Email.Validate(author.Email); err != nil {
			return validation.NewError("validation_invalid_email",
				fmt.Sprintf("author %s: invalid email %q", author.Name, author.Email))
		}
	}

	return nil
}

func validateRepositoryURL(repo string) error {
	parsed, err := url.Parse(repo)
	if err != nil {
		return fmt.Errorf("repository URL %q: %w", repo, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("repository URL %q: must use http or https", repo)
	}
	if parsed.Host == "" {
		return fmt.Errorf("repository URL %q: missing host", repo)
	}
	return nil
}
