// Package server exposes the card pipeline over gRPC.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/export"
	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

// MaxFieldLength caps the text accepted for a single card field.
const MaxFieldLength = 4096

type CardService struct {
	proc     *pipeline.Processor
	exporter *export.Service
	logger   *slog.Logger
}

var _ CardServiceServer = (*CardService)(nil)

func NewCardService(proc *pipeline.Processor, exporter *export.Service, logger *slog.Logger) *CardService {
	if logger == nil {
		logger = slog.Default()
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	return &CardService{proc: proc, exporter: exporter, logger: logger}
}

func sessionID(ctx context.Context) string {
	if sid := common.SessionIDFromContext(ctx); sid != "" {
		return sid
	}
	return session.DefaultID
}

func (s *CardService) Capture(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	if len(req.GetValue()) == 0 {
		return nil, fmt.Errorf("%w: image is required", common.ErrInvalidInput)
	}
	ext := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(MDImageExt); len(v) > 0 {
			ext = v[0]
		}
	}
	c, err := s.proc.Capture(ctx, sessionID(ctx), req.GetValue(), ext)
	if err != nil {
		return nil, err
	}
	card, err := cardToStruct(c.Card)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{
		"id":             c.ID.String(),
		"source":         string(c.Source),
		"ocr_confidence": c.OCRConfidence,
		"elapsed_ms":     float64(c.Duration.Milliseconds()),
		"card":           card.AsMap(),
	})
}

func (s *CardService) ListCards(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	cards := s.proc.Store().List()
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(cards))}
	for _, c := range cards {
		st, err := cardToStruct(c)
		if err != nil {
			return nil, err
		}
		out.Values = append(out.Values, structpb.NewStructValue(st))
	}
	return out, nil
}

// UpdateCard expects {"index": n, "field": "...", "value": "..."}.
func (s *CardService) UpdateCard(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	index, err := intField(req, "index")
	if err != nil {
		return nil, err
	}
	v := common.NewValidator().
		Field("index", index, common.NonNegative).
		Field("value", stringField(req, "value"), common.MaxLength(MaxFieldLength))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	field, ok := entity.ParseField(stringField(req, "field"))
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", common.ErrInvalidInput, stringField(req, "field"))
	}
	if err := s.proc.Store().Update(ctx, index, field, stringField(req, "value")); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func (s *CardService) DeleteCard(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error) {
	if err := s.proc.Store().Delete(ctx, int(req.GetValue())); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

// Export returns the artifact bytes; filename and content type travel as header metadata.
func (s *CardService) Export(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	raw := req.GetValue()
	if raw == "" {
		raw = string(constants.FormatJSON)
	}
	format, ok := constants.ParseExportFormat(raw)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported export format %q", common.ErrInvalidInput, raw)
	}
	art, err := s.exporter.Export(format, s.proc.Store().List())
	if err != nil {
		return nil, err
	}
	if err := grpc.SetHeader(ctx, metadata.Pairs(MDFilename, art.Filename, MDContentType, art.ContentType)); err != nil {
		s.logger.Warn("export.header.failed", "error", err)
	}
	return wrapperspb.Bytes(art.Data), nil
}

// SetCredential expects {"provider": "...", "key": "..."}; either may be omitted.
func (s *CardService) SetCredential(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	sid := sessionID(ctx)
	if raw := strings.TrimSpace(stringField(req, "provider")); raw != "" {
		p, ok := constants.CanonicalizeProvider(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown provider %q", common.ErrInvalidInput, raw)
		}
		s.proc.Sessions().SetProvider(sid, p)
	}
	if _, ok := req.GetFields()["key"]; ok {
		s.proc.Sessions().SetKey(sid, stringField(req, "key"))
	}
	s.logger.Info("credential.set", "session_id", sid, "provider", s.proc.Sessions().Get(sid).Provider)
	return &emptypb.Empty{}, nil
}

func (s *CardService) ClearCredential(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.proc.Sessions().ClearKey(sessionID(ctx))
	return &emptypb.Empty{}, nil
}

// EndSession forgets the caller's provider and key.
func (s *CardService) EndSession(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	sid := sessionID(ctx)
	s.proc.Sessions().End(sid)
	s.logger.Info("session.ended", "session_id", sid, "live_sessions", s.proc.Sessions().Len())
	return &emptypb.Empty{}, nil
}

func (s *CardService) ValidateCredential(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	cred := s.proc.Sessions().Get(sessionID(ctx))
	v := llm.ValidateCredential(cred.Provider, cred.Key)
	return structpb.NewStruct(map[string]any{
		"provider": string(cred.Provider),
		"valid":    v.Valid,
		"message":  v.Message,
	})
}
