package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/export"
	"github.com/joseph-ayodele/contracts-checker/internal/ingest"
	"github.com/joseph-ayodele/contracts-checker/internal/pipeline"
	"github.com/joseph-ayodele/contracts-checker/internal/registry"
)

// DocumentProcessor is the pipeline as seen by the service.
type DocumentProcessor interface {
	Process(ctx context.Context, doc []byte, opts pipeline.Options) (pipeline.Report, error)
}

// ComplianceService implements ComplianceServer on top of the pipeline.
type ComplianceService struct {
	processor DocumentProcessor
	registry  registry.Registry
	scanner   *ingest.Scanner
	exporter  *export.Service
	maxBytes  int
	timeout   time.Duration
	debug     bool
	logger    *slog.Logger
}

type ServiceOption func(*ComplianceService)

// WithMaxDocumentMB rejects Check requests above the given size.
func WithMaxDocumentMB(mb int) ServiceOption {
	return func(s *ComplianceService) {
		if mb > 0 {
			s.maxBytes = mb << 20
		}
	}
}

// WithRequestTimeout bounds each pipeline run.
func WithRequestTimeout(d time.Duration) ServiceOption {
	return func(s *ComplianceService) { s.timeout = d }
}

// WithDebugTraces attaches rule traces to every report.
func WithDebugTraces(on bool) ServiceOption {
	return func(s *ComplianceService) { s.debug = on }
}

func NewComplianceService(proc DocumentProcessor, reg registry.Registry, logger *slog.Logger, opts ...ServiceOption) *ComplianceService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ComplianceService{
		processor: proc,
		registry:  reg,
		scanner:   ingest.NewScanner(logger),
		exporter:  export.NewService(logger),
		maxBytes:  25 << 20,
		logger:    logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *ComplianceService) Check(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	doc := req.GetValue()
	if len(doc) == 0 {
		return nil, common.InvalidArgumentError("document is required")
	}
	if len(doc) > s.maxBytes {
		return nil, common.InvalidArgumentErrorf("document exceeds %d bytes", s.maxBytes)
	}

	ctx, reqID := common.EnsureRequestID(ctx)
	report, err := s.process(ctx, doc)
	if err != nil {
		s.logger.Warn("check.failed", "request_id", reqID, "error", err)
		return nil, common.ToStatus(err)
	}
	out, err := toStruct(report)
	if err != nil {
		return nil, common.InternalErrorf("encode report: %v", err)
	}
	return out, nil
}

func (s *ComplianceService) ScanDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	root, skipHidden, err := directoryArgs(req)
	if err != nil {
		return nil, err
	}
	results, stats, err := s.checkDirectory(ctx, root, skipHidden)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("scan directory: %v", err)
	}

	type item struct {
		Path   string           `json:"path"`
		Error  string           `json:"error,omitempty"`
		Report *pipeline.Report `json:"report,omitempty"`
	}
	items := make([]item, 0, len(results))
	for _, r := range results {
		it := item{Path: r.Source}
		if r.Err != nil {
			it.Error = r.Err.Error()
		} else {
			rep := r.Report
			it.Report = &rep
		}
		items = append(items, it)
	}
	out, err := toStruct(map[string]any{
		"scanned":      stats.Scanned,
		"matched":      stats.Matched,
		"succeeded":    stats.Succeeded,
		"deduplicated": stats.Deduplicated,
		"failed":       stats.Failed,
		"results":      items,
	})
	if err != nil {
		return nil, common.InternalErrorf("encode results: %v", err)
	}
	return out, nil
}

func (s *ComplianceService) ExportDirectory(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	root, skipHidden, err := directoryArgs(req)
	if err != nil {
		return nil, err
	}
	results, _, err := s.checkDirectory(ctx, root, skipHidden)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("export directory: %v", err)
	}
	xlsx, err := s.exporter.ExportIssuesXLSX(results)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "root", root, "error", err)
		return nil, common.InternalError(err.Error())
	}
	return wrapperspb.Bytes(xlsx), nil
}

func (s *ComplianceService) ListRegistry(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	forms := map[string]any{}
	for code, e := range s.registry {
		forms[code] = e
	}
	out, err := toStruct(map[string]any{"forms": forms})
	if err != nil {
		return nil, common.InternalErrorf("encode registry: %v", err)
	}
	return out, nil
}

func (s *ComplianceService) process(ctx context.Context, doc []byte) (pipeline.Report, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.processor.Process(ctx, doc, pipeline.Options{Debug: s.debug})
}

// checkDirectory runs every unique document under root through the
// pipeline. Per-document failures are recorded, not returned.
func (s *ComplianceService) checkDirectory(ctx context.Context, root string, skipHidden bool) ([]export.DocumentResult, ingest.DirStats, error) {
	s.logger.Info("starting directory scan", "root", root, "skip_hidden", skipHidden)
	docs, stats, err := s.scanner.ScanDirectory(ctx, root, skipHidden)
	if err != nil {
		return nil, stats, err
	}

	out := make([]export.DocumentResult, 0, len(docs))
	for _, d := range docs {
		if d.Deduplicated {
			continue
		}
		res := export.DocumentResult{Source: d.Path}
		if d.Err != "" {
			res.Err = errors.New(d.Err)
			out = append(out, res)
			continue
		}
		body, err := os.ReadFile(d.Path)
		if err != nil {
			res.Err = err
			out = append(out, res)
			continue
		}
		report, err := s.process(common.WithDocumentID(ctx, d.HashHex), body)
		if err != nil {
			s.logger.Error("pipeline.failed", "path", d.Path, "error", err)
			res.Err = err
		}
		res.Report = report
		out = append(out, res)
	}
	s.logger.Info("directory scan completed", "root", root, "documents", len(out))
	return out, stats, nil
}

func directoryArgs(req *structpb.Struct) (string, bool, error) {
	fields := req.GetFields()
	root := strings.TrimSpace(fields["root_path"].GetStringValue())
	if root == "" {
		return "", false, common.InvalidArgumentError("root_path is required")
	}
	skipHidden := true
	if v, ok := fields["skip_hidden"]; ok {
		if _, isBool := v.GetKind().(*structpb.Value_BoolValue); !isBool {
			return "", false, common.InvalidArgumentError("skip_hidden must be a bool")
		}
		skipHidden = v.GetBoolValue()
	}
	return root, skipHidden, nil
}

// toStruct converts any JSON-encodable value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("not an object: %w", err)
	}
	return structpb.NewStruct(m)
}
