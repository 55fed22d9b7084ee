// Package secrets resolves provider credentials by name.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gocloud.dev/runtimevar"
	_ "gocloud.dev/runtimevar/constantvar"
	_ "gocloud.dev/runtimevar/filevar"
	_ "gocloud.dev/runtimevar/gcpsecretmanager"
)

// RuntimeVarProvider reads secrets through a runtimevar URL template, for
// example "gcpsecretmanager://projects/my-project/secrets/%s?decoder=string".
// With an empty template, secrets come from the environment.
type RuntimeVarProvider struct {
	urlTemplate string
	lookupEnv   func(string) (string, bool)
}

func NewRuntimeVarProvider(urlTemplate string) *RuntimeVarProvider {
	return &RuntimeVarProvider{urlTemplate: urlTemplate, lookupEnv: os.LookupEnv}
}

func (p *RuntimeVarProvider) Secret(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.New("empty secret name")
	}
	if p.urlTemplate == "" {
		v, ok := p.lookupEnv(name)
		if !ok || v == "" {
			return "", errors.Newf("secret %s is not set in the environment", name)
		}
		return v, nil
	}

	v, err := runtimevar.OpenVariable(ctx, fmt.Sprintf(p.urlTemplate, name))
	if err != nil {
		return "", errors.Wrapf(err, "opening secret %s", name)
	}
	defer v.Close()

	snap, err := v.Latest(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "reading secret %s", name)
	}
	s, ok := snap.Value.(string)
	if !ok {
		return "", errors.Newf("secret %s is not a string; add ?decoder=string to the URL", name)
	}
	return strings.TrimSpace(s), nil
}
