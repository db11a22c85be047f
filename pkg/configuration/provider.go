package configuration

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/conneroisu/smallgears/pkg/errors"
	"github.com/conneroisu/smallgears/pkg/logging"
)

// Provider gives access to a configuration file found by a Locator. When
// the located file does not exist it falls back to bundled resources, such
// as an embed.FS.
type Provider struct {
	*Locator

	resources fs.FS
	logger    logging.Logger
}

// ProviderOption modifies a Provider.
type ProviderOption func(*Provider)

// WithResources sets the fallback file system searched for the
// configuration filename.
func WithResources(resources fs.FS) ProviderOption {
	return func(p *Provider) { p.resources = resources }
}

// WithLogger sets the provider's logger.
func WithLogger(logger logging.Logger) ProviderOption {
	return func(p *Provider) { p.logger = logger }
}

// WithLocatorOptions configures the underlying locator.
func WithLocatorOptions(opts ...LocatorOption) ProviderOption {
	return func(p *Provider) {
		for _, opt := range opts {
			opt(p.Locator)
		}
	}
}

// NewProvider creates a provider for filename, whose directory may be named
// by the location property.
func NewProvider(property, filename string, opts ...ProviderOption) *Provider {
	p := &Provider{
		Locator: NewLocator(property, filename),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithComponent("configuration")
	return p
}

// Provide opens the configuration. It reports false, with a nil error, when
// there is no configuration and mandatory is false. Callers close the
// returned stream.
func (p *Provider) Provide(ctx context.Context, mandatory bool) (io.ReadCloser, bool, error) {
	location, err := p.Locate()
	if err != nil {
		return nil, false, err
	}

	if _, statErr := os.Stat(location); statErr == nil {
		p.logger.Info(ctx, "loading configuration", "location", location)

		f, err := os.Open(location)
		if err != nil {
			return nil, false, p.unreadable(err)
		}
		return f, true, nil
	}

	if p.resources != nil {
		f, err := p.resources.Open(p.Filename())
		switch {
		case err == nil:
			p.logger.Info(ctx, "taking configuration from resources", "file", p.Filename())
			return f, true, nil
		case !stderrors.Is(err, fs.ErrNotExist):
			return nil, false, p.unreadable(err)
		}
	}

	if mandatory {
		return nil, false, errors.NewConfigError(errors.ErrCodeConfigNotFound,
			fmt.Sprintf("no configuration for %s found on file system or resources", p.Filename())).
			WithContext("location", location)
	}

	p.logger.Debug(ctx, "no configuration found", "file", p.Filename())
	return nil, false, nil
}

func (p *Provider) unreadable(err error) error {
	return errors.Unchecked(errors.ErrCodeConfigUnreadable,
		fmt.Sprintf("cannot read the configuration for %s", p.Filename()), err)
}
