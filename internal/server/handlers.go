package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/porenet-mcp/internal/poreseg"
	"github.com/ironsheep/porenet-mcp/internal/render"
	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pore_extract", "pore_label_at").
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Fills unset optional parameters from the server configuration
//  3. Loads masks or stored extractions as needed
//  4. Calls the appropriate voxel/poreseg/render function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Mask Input
	case "pore_mask_load":
		return s.handleMaskLoad(args)

	// Extraction
	case "pore_extract":
		return s.handleExtract(ctx, args)
	case "pore_release":
		return s.handleRelease(args)

	// Queries
	case "pore_label_at":
		return s.handleLabelAt(args)
	case "pore_body_stats":
		return s.handleBodyStats(args)

	// Visualization
	case "pore_label_slice":
		return s.handleLabelSlice(args)

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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// threshold resolves an optional threshold argument against the config.
func (s *Server) threshold(arg *int) (uint8, error) {
	level := s.cfg.Mask.Threshold
	if arg != nil {
		level = *arg
	}
	if level < 1 || level > 255 {
		return 0, fmt.Errorf("threshold must be in [1,255], got %d", level)
	}
	return uint8(level), nil
}

// === Mask Input Handlers ===

type maskLoadArgs struct {
	Paths     []string `json:"paths"`
	Threshold *int     `json:"threshold"`
}

// MaskLoadResult describes a loaded mask.
type MaskLoadResult struct {
	*voxel.MaskInfo
	Threshold uint8  `json:"threshold"`
	Size      string `json:"size"`
}

func (s *Server) handleMaskLoad(args json.RawMessage) (interface{}, error) {
	var a maskLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	level, err := s.threshold(a.Threshold)
	if err != nil {
		return nil, err
	}
	m, err := s.masks.Load(a.Paths, level)
	if err != nil {
		return nil, err
	}
	return &MaskLoadResult{
		MaskInfo:  voxel.Describe(m),
		Threshold: level,
		Size:      humanize.Comma(int64(m.Len())) + " voxels",
	}, nil
}

// === Extraction Handlers ===

type extractArgs struct {
	Paths     []string `json:"paths"`
	Threshold *int     `json:"threshold"`
	Sigma     *float64 `json:"sigma"`
	Workers   *int     `json:"workers"`
	Strict    *bool    `json:"strict"`
}

// ExtractResult summarizes a stored extraction.
type ExtractResult struct {
	ExtractionID  string     `json:"extraction_id"`
	Dims          voxel.Dims `json:"dims"`
	PoreVoxels    int        `json:"pore_voxels"`
	Peaks         int        `json:"peaks"`
	MedialSpheres int        `json:"medial_spheres"`
	Bodies        int        `json:"bodies"`
	Sigma         float64    `json:"sigma"`
	Workers       int        `json:"workers"`
	BodySize      SizeStats  `json:"body_size"`
	Elapsed       string     `json:"elapsed"`
}

func (s *Server) handleExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	level, err := s.threshold(a.Threshold)
	if err != nil {
		return nil, err
	}

	opts := s.cfg.Options()
	if a.Sigma != nil {
		opts.Sigma = *a.Sigma
	}
	if a.Workers != nil {
		opts.Workers = *a.Workers
	}
	if a.Strict != nil {
		opts.Strict = *a.Strict
	}

	mask, err := s.masks.Load(a.Paths, level)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := poreseg.Extract(ctx, mask, opts)
	if err != nil {
		return nil, err
	}
	e := &Extraction{
		Paths:     a.Paths,
		Threshold: level,
		Options:   opts,
		Mask:      mask,
		Result:    res,
		Created:   start,
		Elapsed:   time.Since(start),
	}
	id, dropped := s.results.Add(e)
	for _, old := range dropped {
		s.releaseMask(old)
	}

	return &ExtractResult{
		ExtractionID:  id,
		Dims:          mask.Dims,
		PoreVoxels:    voxel.Count(mask),
		Peaks:         res.Peaks,
		MedialSpheres: res.MedialSurface,
		Bodies:        res.Bodies,
		Sigma:         opts.Sigma,
		Workers:       opts.Workers,
		BodySize:      sizeStats(bodySizes(res)),
		Elapsed:       e.Elapsed.Round(time.Millisecond).String(),
	}, nil
}

type releaseArgs struct {
	ExtractionID string `json:"extraction_id"`
}

func (s *Server) handleRelease(args json.RawMessage) (interface{}, error) {
	var a releaseArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	e := s.results.Remove(a.ExtractionID)
	if e == nil {
		return nil, fmt.Errorf("unknown extraction id %q", a.ExtractionID)
	}
	s.releaseMask(e)
	return map[string]interface{}{"released": a.ExtractionID}, nil
}

// releaseMask evicts the cached mask of a dropped extraction unless another
// stored extraction still refers to it.
func (s *Server) releaseMask(e *Extraction) {
	if s.results.UsesMask(e.Mask) {
		return
	}
	s.masks.Evict(e.Paths, e.Threshold)
}

// === Query Handlers ===

type labelAtArgs struct {
	ExtractionID string `json:"extraction_id"`
	I            int    `json:"i"`
	J            int    `json:"j"`
	K            int    `json:"k"`
}

// LabelAtResult is the label of one voxel.
type LabelAtResult struct {
	Voxel voxel.Coord     `json:"voxel"`
	Pore  bool            `json:"pore"`
	Label int32           `json:"label"`
	Seed  *poreseg.Sphere `json:"seed,omitempty"`
}

func (s *Server) handleLabelAt(args json.RawMessage) (interface{}, error) {
	var a labelAtArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	e, err := s.results.Get(a.ExtractionID)
	if err != nil {
		return nil, err
	}
	c := voxel.Coord{I: a.I, J: a.J, K: a.K}
	labels := e.Result.Labels
	if !labels.InBounds(c) {
		return nil, fmt.Errorf("voxel %s outside %s grid", c, labels.Dims)
	}

	out := &LabelAtResult{Voxel: c, Pore: e.Mask.At(c), Label: labels.At(c)}
	if out.Label > 0 {
		out.Seed = rootsByLabel(e.Result.Hierarchy)[out.Label-1]
	}
	return out, nil
}

type bodyStatsArgs struct {
	ExtractionID string `json:"extraction_id"`
	Limit        int    `json:"limit"`
}

// BodyInfo describes one pore body. Center and Radius are those of the root
// sphere that seeded it.
type BodyInfo struct {
	Label    int32       `json:"label"`
	Voxels   int         `json:"voxels"`
	Spheres  int         `json:"spheres"`
	Center   voxel.Coord `json:"center"`
	Radius   float64     `json:"radius"`
	Bounds   *voxel.Box  `json:"bounds,omitempty"`
	Centroid [3]float64  `json:"centroid"`
}

// BodyStatsResult lists pore bodies by size.
type BodyStatsResult struct {
	Bodies   int        `json:"bodies"`
	Vanished int        `json:"vanished"` // labels with no voxel left after smoothing
	Size     SizeStats  `json:"size"`
	Largest  []BodyInfo `json:"largest"`
}

// SizeStats summarizes body voxel counts.
type SizeStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

func (s *Server) handleBodyStats(args json.RawMessage) (interface{}, error) {
	var a bodyStatsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Limit <= 0 {
		a.Limit = 20
	}
	e, err := s.results.Get(a.ExtractionID)
	if err != nil {
		return nil, err
	}

	sizes := bodySizes(e.Result)
	spheres := make([]int, len(sizes))
	if h := e.Result.Hierarchy; h != nil {
		for _, sp := range h.Spheres {
			spheres[sp.Label-1]++
		}
	}

	roots := rootsByLabel(e.Result.Hierarchy)
	bodies := make([]BodyInfo, len(sizes))
	for i := range bodies {
		bodies[i] = BodyInfo{
			Label:   int32(i + 1),
			Spheres: spheres[i],
			Center:  roots[i].Center,
			Radius:  roots[i].Radius,
		}
	}
	measureBodies(e.Result.Labels, bodies)
	vanished := 0
	for _, n := range sizes {
		if n == 0 {
			vanished++
		}
	}
	sort.SliceStable(bodies, func(i, j int) bool { return bodies[i].Voxels > bodies[j].Voxels })
	if len(bodies) > a.Limit {
		bodies = bodies[:a.Limit]
	}

	return &BodyStatsResult{
		Bodies:   len(sizes),
		Vanished: vanished,
		Size:     sizeStats(sizes),
		Largest:  bodies,
	}, nil
}

// measureBodies fills voxel counts, bounds and centroids of bodies, which are
// indexed by label-1.
func measureBodies(labels *voxel.Labels, bodies []BodyInfo) {
	boxes := make([]voxel.Box, len(bodies))
	for i := range boxes {
		boxes[i] = voxel.EmptyBox()
	}
	for idx, l := range labels.Data {
		if l <= 0 {
			continue
		}
		c := labels.Coord(idx)
		b := &bodies[l-1]
		b.Voxels++
		b.Centroid[0] += float64(c.I)
		b.Centroid[1] += float64(c.J)
		b.Centroid[2] += float64(c.K)
		boxes[l-1] = boxes[l-1].Include(c)
	}
	for i := range bodies {
		b := &bodies[i]
		if b.Voxels == 0 {
			continue
		}
		for a := range b.Centroid {
			b.Centroid[a] /= float64(b.Voxels)
		}
		box := boxes[i]
		b.Bounds = &box
	}
}

// bodySizes returns the voxel count of labels 1..Bodies, indexed by label-1.
func bodySizes(res *poreseg.Result) []int {
	sizes := make([]int, res.Bodies)
	for _, l := range res.Labels.Data {
		if l > 0 {
			sizes[l-1]++
		}
	}
	return sizes
}

func sizeStats(sizes []int) SizeStats {
	if len(sizes) == 0 {
		return SizeStats{}
	}
	x := make([]float64, len(sizes))
	for i, n := range sizes {
		x[i] = float64(n)
	}
	sort.Float64s(x)
	mean, std := stat.MeanStdDev(x, nil)
	if len(x) == 1 {
		std = 0
	}
	return SizeStats{
		Mean:   mean,
		StdDev: std,
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
		Min:    int(x[0]),
		Max:    int(x[len(x)-1]),
	}
}

// rootsByLabel returns the root sphere of each label, indexed by label-1.
func rootsByLabel(h *poreseg.Hierarchy) []*poreseg.Sphere {
	if h == nil {
		return nil
	}
	roots := make([]*poreseg.Sphere, h.Labels)
	for _, id := range h.Roots() {
		roots[h.Spheres[id].Label-1] = &h.Spheres[id]
	}
	return roots
}

// === Visualization Handlers ===

type labelSliceArgs struct {
	ExtractionID string `json:"extraction_id"`
	Index        int    `json:"index"`
	Scale        int    `json:"scale"`
}

func (s *Server) handleLabelSlice(args json.RawMessage) (interface{}, error) {
	var a labelSliceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1
	}
	e, err := s.results.Get(a.ExtractionID)
	if err != nil {
		return nil, err
	}
	return render.LabelSlice(e.Result.Labels, a.Index, a.Scale)
}
