package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/chartmask/internal/detection"
	"github.com/ironsheep/chartmask/internal/figure"
	"github.com/ironsheep/chartmask/internal/geometry"
	"github.com/ironsheep/chartmask/internal/imaging"
	"github.com/ironsheep/chartmask/internal/label"
	"github.com/ironsheep/chartmask/internal/mask"
	"github.com/ironsheep/chartmask/internal/ocr"
	"github.com/ironsheep/chartmask/internal/scoring"
)

// ErrOCRUnavailable is returned when recognition is requested from a server
// without a recognizer.
var ErrOCRUnavailable = errors.New("OCR is not configured")

// ErrWordsUnavailable is returned when word boxes are requested from a
// recognizer that cannot locate words.
var ErrWordsUnavailable = errors.New("OCR backend does not report word boxes")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mask_generate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "label_check":
		return s.handleLabelCheck(args)
	case "mask_generate":
		return s.handleMaskGenerate(args)
	case "regions_extract":
		return s.handleRegionsExtract(ctx, args)
	case "masks_score":
		return s.handleMasksScore(ctx, args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errors.New("missing arguments")
	}
	return json.Unmarshal(args, v)
}

// === Label Handlers ===

type labelCheckArgs struct {
	Path string `json:"path"`
}

type labelCheckResult struct {
	label.Verdict
	Description  string `json:"description,omitempty"`
	TextBoxes    int    `json:"text_boxes"`
	OutsideBoxes int    `json:"outside_boxes"`
}

func (s *Server) handleLabelCheck(args json.RawMessage) (interface{}, error) {
	var a labelCheckArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	fig, err := figure.Load(a.Path)
	if err != nil {
		return nil, err
	}
	v := s.classifier.Classify(fig)
	res := labelCheckResult{Verdict: v, TextBoxes: len(fig.ImageText)}
	for _, tb := range fig.ImageText {
		if !geometry.Overlaps(tb.TextBB, fig.ImageBB) {
			res.OutsideBoxes++
		}
	}
	if v.Bad {
		res.Description = v.Reason.Description()
	}
	return res, nil
}

type maskGenerateArgs struct {
	FigurePath string `json:"figure_path"`
	OutputPath string `json:"output_path"`
	ChartPath  string `json:"chart_path"`
	DebugPath  string `json:"debug_path"`
	Factor     int    `json:"factor"`
}

type maskGenerateResult struct {
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Pixels    int64  `json:"pixels"`
	DebugPath string `json:"debug_path,omitempty"`
}

func (s *Server) handleMaskGenerate(args json.RawMessage) (interface{}, error) {
	var a maskGenerateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Factor == 0 {
		a.Factor = 1
	}
	if a.Factor < 0 {
		return nil, fmt.Errorf("invalid factor %d", a.Factor)
	}
	if a.DebugPath != "" && a.ChartPath == "" {
		return nil, errors.New("debug_path requires chart_path")
	}

	fig, err := figure.Load(a.FigurePath)
	if err != nil {
		return nil, err
	}

	opts := s.maskOpts
	opts.Factor = float64(a.Factor)
	w := mask.Writer{Options: opts}
	if a.DebugPath != "" {
		hook, err := mask.DebugComposite(a.DebugPath, s.debugTint)
		if err != nil {
			return nil, err
		}
		w.Hooks = append(w.Hooks, hook)
	}

	var m *mask.Mask
	if a.ChartPath != "" {
		m, err = w.Write(fig, a.ChartPath, a.OutputPath)
	} else {
		width, height := mask.SizeFor(fig, opts.Factor)
		m, err = w.WriteSized(fig, width, height, "", a.OutputPath)
	}
	if err != nil {
		return nil, err
	}
	s.cache.Evict(a.OutputPath)
	if a.DebugPath != "" {
		s.cache.Evict(a.DebugPath)
	}
	return maskGenerateResult{
		Path:      a.OutputPath,
		Width:     m.Width(),
		Height:    m.Height(),
		Pixels:    m.Count(),
		DebugPath: a.DebugPath,
	}, nil
}

// === Region Handlers ===

type regionsExtractArgs struct {
	MaskPath       string `json:"mask_path"`
	ImagePath      string `json:"image_path"`
	Threshold      *int   `json:"threshold"`
	IncludePatches bool   `json:"include_patches"`
	Recognize      bool   `json:"recognize"`
	Words          bool   `json:"words"`
}

type regionResult struct {
	Region geometry.RotatedRect  `json:"region"`
	Bounds geometry.Rect         `json:"bounds"`
	Patch  *imaging.EncodedImage `json:"patch,omitempty"`
	Texts  []string              `json:"texts,omitempty"`
	Words  []ocr.Word            `json:"words,omitempty"`
	Error  string                `json:"error,omitempty"`
}

type regionsExtractResult struct {
	Count   int            `json:"count"`
	Regions []regionResult `json:"regions"`
}

func (s *Server) handleRegionsExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a regionsExtractArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	threshold := 200
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("threshold %d out of range 0..255", threshold)
	}
	if (a.Recognize || a.Words) && s.recognizer == nil {
		return nil, ErrOCRUnavailable
	}
	var finder ocr.WordFinder
	if a.Words {
		wf, ok := s.recognizer.(ocr.WordFinder)
		if !ok {
			return nil, ErrWordsUnavailable
		}
		finder = wf
	}

	m, err := s.cache.LoadGray(a.MaskPath)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.ImagePath)
	if err != nil {
		return nil, err
	}

	patches, err := detection.ExtractRegions(m, img, uint8(threshold), s.regionOpts)
	if err != nil {
		return nil, err
	}

	res := regionsExtractResult{Count: len(patches), Regions: make([]regionResult, 0, len(patches))}
	for _, p := range patches {
		rr := regionResult{Region: p.Region, Bounds: p.Region.BoundingBox()}
		if a.IncludePatches {
			enc, err := imaging.Encode(p.Image, 1.0)
			if err != nil {
				return nil, err
			}
			rr.Patch = enc
		}
		if a.Recognize {
			texts, err := ocr.RecognizeRotations(ctx, s.recognizer, p.Image)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				rr.Error = err.Error()
			} else {
				rr.Texts = texts
			}
		}
		if finder != nil && rr.Error == "" {
			words, err := finder.Words(ctx, p.Image)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				rr.Error = err.Error()
			} else {
				rr.Words = words
			}
		}
		res.Regions = append(res.Regions, rr)
	}
	return res, nil
}

// === Scoring Handlers ===

type masksScoreArgs struct {
	ListPath string `json:"list_path"`
	Pairs    []struct {
		Prediction string `json:"prediction"`
		Truth      string `json:"truth"`
	} `json:"pairs"`
	Threshold *int `json:"threshold"`
}

func (s *Server) handleMasksScore(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a masksScoreArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	opts := s.scoreOpts
	opts.Logger = s.logger
	if a.Threshold != nil {
		if *a.Threshold < 0 || *a.Threshold > 255 {
			return nil, fmt.Errorf("threshold %d out of range 0..255", *a.Threshold)
		}
		opts.PredictionThreshold = uint8(*a.Threshold)
	}

	switch {
	case a.ListPath != "" && len(a.Pairs) > 0:
		return nil, errors.New("give either list_path or pairs, not both")
	case a.ListPath != "":
		return scoring.ScoreList(ctx, a.ListPath, opts)
	case len(a.Pairs) > 0:
		preds := make([]string, len(a.Pairs))
		truths := make(map[string]string, len(a.Pairs))
		for i, p := range a.Pairs {
			if _, dup := truths[p.Prediction]; dup {
				return nil, fmt.Errorf("prediction %q listed twice", p.Prediction)
			}
			preds[i] = p.Prediction
			truths[p.Prediction] = p.Truth
		}
		opts.NameMapper = func(pred string) string { return truths[pred] }
		return scoring.ScoreFiles(ctx, preds, opts)
	default:
		return nil, errors.New("list_path or pairs is required")
	}
}

// === Basic Image Information Handlers ===

type imageDimensionsArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageDimensionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}
