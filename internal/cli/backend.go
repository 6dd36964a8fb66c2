package cli

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/app"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/server"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

// backend is what the card commands operate on: the local store or a daemon.
type backend interface {
	Capture(ctx context.Context, image []byte, ext string) (entity.Card, string, error)
	ListCards(ctx context.Context) ([]entity.Card, error)
	UpdateCard(ctx context.Context, index int, field entity.Field, value string) error
	DeleteCard(ctx context.Context, index int) error
	Export(ctx context.Context, format string) ([]byte, string, error)
	ValidateCredential(ctx context.Context) (bool, string, error)
}

type localBackend struct{ app *app.App }

func (b localBackend) Capture(ctx context.Context, image []byte, ext string) (entity.Card, string, error) {
	c, err := b.app.Processor.Capture(ctx, session.DefaultID, image, ext)
	return c.Card, string(c.Source), err
}

func (b localBackend) ListCards(ctx context.Context) ([]entity.Card, error) {
	return b.app.Store.List(), nil
}

func (b localBackend) UpdateCard(ctx context.Context, index int, field entity.Field, value string) error {
	return b.app.Store.Update(ctx, index, field, value)
}

func (b localBackend) DeleteCard(ctx context.Context, index int) error {
	return b.app.Store.Delete(ctx, index)
}

func (b localBackend) Export(ctx context.Context, format string) ([]byte, string, error) {
	f, ok := constants.ParseExportFormat(format)
	if !ok {
		return nil, "", fmt.Errorf("%w: unsupported export format %q", common.ErrInvalidInput, format)
	}
	art, err := b.app.Exporter.Export(f, b.app.Store.List())
	if err != nil {
		return nil, "", err
	}
	return art.Data, art.Filename, nil
}

func (b localBackend) ValidateCredential(ctx context.Context) (bool, string, error) {
	cred := b.app.Sessions.Get(session.DefaultID)
	v := llm.ValidateCredential(cred.Provider, cred.Key)
	return v.Valid, v.Message, nil
}

// openBackend returns the backend and a release func that is always safe to call.
func (st *state) openBackend(ctx context.Context) (backend, func(), error) {
	if st.remote != "" {
		client, closeFn, err := st.dialRemote()
		if err != nil {
			return nil, func() {}, err
		}
		return client, closeFn, nil
	}
	a, err := st.openApp(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	return localBackend{app: a}, a.Close, nil
}

func (st *state) dialRemote() (*server.Client, func(), error) {
	conn, err := grpc.NewClient(st.remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", st.remote, err)
	}
	return server.NewClient(conn, st.sessionID), func() { _ = conn.Close() }, nil
}
