package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/cardscan/internal/entity"
)

// Client is a typed wrapper over a connection to CardService.
type Client struct {
	cc        grpc.ClientConnInterface
	sessionID string
}

func NewClient(cc grpc.ClientConnInterface, sessionID string) *Client {
	return &Client{cc: cc, sessionID: sessionID}
}

func (c *Client) outgoing(ctx context.Context, kv ...string) context.Context {
	if c.sessionID != "" {
		kv = append(kv, MDSessionID, c.sessionID)
	}
	if len(kv) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}

// Capture sends an encoded image and returns the stored card and its source.
func (c *Client) Capture(ctx context.Context, image []byte, ext string) (entity.Card, string, error) {
	out := &structpb.Struct{}
	ctx = c.outgoing(ctx, MDImageExt, ext)
	if err := c.invoke(ctx, "Capture", wrapperspb.Bytes(image), out); err != nil {
		return entity.Card{}, "", err
	}
	card := CardFromStruct(out.GetFields()["card"].GetStructValue())
	return card, stringField(out, "source"), nil
}

func (c *Client) ListCards(ctx context.Context) ([]entity.Card, error) {
	out := &structpb.ListValue{}
	if err := c.invoke(c.outgoing(ctx), "ListCards", &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	cards := make([]entity.Card, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		cards = append(cards, CardFromStruct(v.GetStructValue()))
	}
	return cards, nil
}

func (c *Client) UpdateCard(ctx context.Context, index int, field entity.Field, value string) error {
	in, err := structpb.NewStruct(map[string]any{"index": index, "field": string(field), "value": value})
	if err != nil {
		return err
	}
	return c.invoke(c.outgoing(ctx), "UpdateCard", in, &emptypb.Empty{})
}

func (c *Client) DeleteCard(ctx context.Context, index int) error {
	return c.invoke(c.outgoing(ctx), "DeleteCard", wrapperspb.Int32(int32(index)), &emptypb.Empty{})
}

// Export returns the artifact bytes and the suggested filename.
func (c *Client) Export(ctx context.Context, format string) ([]byte, string, error) {
	var header metadata.MD
	out := &wrapperspb.BytesValue{}
	if err := c.invoke(c.outgoing(ctx), "Export", wrapperspb.String(format), out, grpc.Header(&header)); err != nil {
		return nil, "", err
	}
	return out.GetValue(), firstMD(header, MDFilename), nil
}

func (c *Client) SetCredential(ctx context.Context, provider, key string) error {
	fields := map[string]any{}
	if provider != "" {
		fields["provider"] = provider
	}
	if key != "" {
		fields["key"] = key
	}
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return err
	}
	return c.invoke(c.outgoing(ctx), "SetCredential", in, &emptypb.Empty{})
}

func (c *Client) ClearCredential(ctx context.Context) error {
	return c.invoke(c.outgoing(ctx), "ClearCredential", &emptypb.Empty{}, &emptypb.Empty{})
}

// EndSession asks the daemon to forget this client's session.
func (c *Client) EndSession(ctx context.Context) error {
	return c.invoke(c.outgoing(ctx), "EndSession", &emptypb.Empty{}, &emptypb.Empty{})
}

// ValidateCredential returns the format check verdict and its message.
func (c *Client) ValidateCredential(ctx context.Context) (bool, string, error) {
	out := &structpb.Struct{}
	if err := c.invoke(c.outgoing(ctx), "ValidateCredential", &emptypb.Empty{}, out); err != nil {
		return false, "", err
	}
	return out.GetFields()["valid"].GetBoolValue(), stringField(out, "message"), nil
}
