package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"auction-advisor/internal/domain"
)

// Ensemble is a gradient boosted tree model read from XGBoost's JSON format.
type Ensemble struct {
	trees     []tree
	weights   []float32 // per-tree weight; 1 for gbtree, weight_drop for dart
	baseScore float32
	link      linkFunc
	objective string
}

// Compile-time interface check.
var _ Predictor = (*Ensemble)(nil)

type tree struct {
	left        []int
	right       []int
	splitIndex  []int
	splitCond   []float32
	defaultLeft []bool
}

// linkFunc maps base_score to margin and margin to output.
type linkFunc struct {
	toMargin func(float32) float32
	toOutput func(float32) float32
}

var identityLink = linkFunc{
	toMargin: func(v float32) float32 { return v },
	toOutput: func(v float32) float32 { return v },
}

var logLink = linkFunc{
	toMargin: func(v float32) float32 { return float32(math.Log(float64(v))) },
	toOutput: func(v float32) float32 { return float32(math.Exp(float64(v))) },
}

// objectiveLinks lists the regression objectives that can be scored.
var objectiveLinks = map[string]linkFunc{
	"":                     identityLink,
	"reg:squarederror":     identityLink,
	"reg:linear":           identityLink,
	"reg:absoluteerror":    identityLink,
	"reg:pseudohubererror": identityLink,
	"reg:quantileerror":    identityLink,
	"reg:squaredlogerror":  identityLink,
	"reg:gamma":            logLink,
	"reg:tweedie":          logLink,
	"count:poisson":        logLink,
}

// xgbModel mirrors the parts of XGBoost's saved JSON model that are read.
type xgbModel struct {
	Learner struct {
		FeatureNames    []string `json:"feature_names"`
		GradientBooster struct {
			Name       string        `json:"name"`
			Model      *xgbTrees     `json:"model"`
			GBTree     *xgbGBTree    `json:"gbtree"`
			WeightDrop []json.Number `json:"weight_drop"`
		} `json:"gradient_booster"`
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
	} `json:"learner"`
}

type xgbGBTree struct {
	Model *xgbTrees `json:"model"`
}

type xgbTrees struct {
	Trees []xgbTree `json:"trees"`
}

type xgbTree struct {
	LeftChildren    []int         `json:"left_children"`
	RightChildren   []int         `json:"right_children"`
	SplitIndices    []int         `json:"split_indices"`
	SplitConditions []json.Number `json:"split_conditions"`
	DefaultLeft     flagList      `json:"default_left"`
	SplitType       []int         `json:"split_type"`
}

// flagList accepts both [0,1] and [false,true] encodings.
type flagList []bool

func (f *flagList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]bool, len(raw))
	for i, r := range raw {
		s := strings.TrimSpace(string(r))
		switch s {
		case "true", "1":
			out[i] = true
		case "false", "0":
			out[i] = false
		default:
			return fmt.Errorf("default_left[%d]: unexpected value %s", i, s)
		}
	}
	*f = out
	return nil
}

// LoadXGBoostFile reads an XGBoost JSON model from path.
func LoadXGBoostFile(path string) (*Ensemble, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xgboost model: %w", err)
	}
	defer f.Close()

	e, err := ReadXGBoost(f)
	if err != nil {
		return nil, fmt.Errorf("read xgboost model %s: %w", path, err)
	}
	return e, nil
}

// ReadXGBoost parses an XGBoost JSON model.
func ReadXGBoost(r io.Reader) (*Ensemble, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var m xgbModel
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	learner := m.Learner

	if err := checkFeatureNames(learner.FeatureNames); err != nil {
		return nil, err
	}
	if nf := learner.LearnerModelParam.NumFeature; nf != "" {
		n, err := strconv.Atoi(nf)
		if err != nil {
			return nil, fmt.Errorf("num_feature %q: %w", nf, err)
		}
		if n != domain.FeatureCount {
			return nil, fmt.Errorf("%w: model has %d features, want %d", ErrSchemaMismatch, n, domain.FeatureCount)
		}
	}

	link, ok := objectiveLinks[learner.Objective.Name]
	if !ok {
		return nil, fmt.Errorf("%w: objective %s", ErrUnsupportedModel, learner.Objective.Name)
	}

	base, err := parseBaseScore(learner.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, err
	}

	booster := learner.GradientBooster
	var trees *xgbTrees
	switch booster.Name {
	case "gbtree", "":
		trees = booster.Model
	case "dart":
		if booster.GBTree != nil {
			trees = booster.GBTree.Model
		}
	default:
		return nil, fmt.Errorf("%w: booster %s", ErrUnsupportedModel, booster.Name)
	}
	if trees == nil {
		return nil, fmt.Errorf("%w: no trees in model", ErrUnsupportedModel)
	}

	e := &Ensemble{
		trees:     make([]tree, 0, len(trees.Trees)),
		weights:   make([]float32, len(trees.Trees)),
		baseScore: base,
		link:      link,
		objective: learner.Objective.Name,
	}
	for i := range e.weights {
		e.weights[i] = 1
	}
	if booster.Name == "dart" {
		if len(booster.WeightDrop) != len(trees.Trees) {
			return nil, fmt.Errorf("dart: %d weights for %d trees", len(booster.WeightDrop), len(trees.Trees))
		}
		for i, w := range booster.WeightDrop {
			v, err := w.Float64()
			if err != nil {
				return nil, fmt.Errorf("dart weight %d: %w", i, err)
			}
			e.weights[i] = float32(v)
		}
	}

	for i, t := range trees.Trees {
		parsed, err := parseTree(t)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		e.trees = append(e.trees, parsed)
	}

	return e, nil
}

func checkFeatureNames(names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != len(domain.FeatureColumns) {
		return fmt.Errorf("%w: model has %d named features, want %d", ErrSchemaMismatch, len(names), len(domain.FeatureColumns))
	}
	for i, name := range names {
		if name != domain.FeatureColumns[i] {
			return fmt.Errorf("%w: feature %d is %q, want %q", ErrSchemaMismatch, i, name, domain.FeatureColumns[i])
		}
	}
	return nil
}

// parseBaseScore accepts "5E-1" and the bracketed "[5E-1]" form.
func parseBaseScore(s string) (float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0.5, nil
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if i := strings.IndexByte(s, ','); i >= 0 {
		return 0, fmt.Errorf("%w: multi-target base_score %q", ErrUnsupportedModel, s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, fmt.Errorf("base_score %q: %w", s, err)
	}
	return float32(v), nil
}

func parseTree(t xgbTree) (tree, error) {
	n := len(t.LeftChildren)
	if n == 0 {
		return tree{}, fmt.Errorf("empty tree")
	}
	if len(t.RightChildren) != n || len(t.SplitIndices) != n || len(t.SplitConditions) != n {
		return tree{}, fmt.Errorf("node arrays have different lengths")
	}
	for _, st := range t.SplitType {
		if st != 0 {
			return tree{}, fmt.Errorf("%w: categorical split", ErrUnsupportedModel)
		}
	}

	out := tree{
		left:        t.LeftChildren,
		right:       t.RightChildren,
		splitIndex:  t.SplitIndices,
		splitCond:   make([]float32, n),
		defaultLeft: make([]bool, n),
	}
	copy(out.defaultLeft, t.DefaultLeft)

	for i, c := range t.SplitConditions {
		v, err := c.Float64()
		if err != nil {
			return tree{}, fmt.Errorf("split_conditions[%d]: %w", i, err)
		}
		out.splitCond[i] = float32(v)
	}

	for i := 0; i < n; i++ {
		if out.left[i] == -1 {
			continue
		}
		if out.left[i] <= i || out.left[i] >= n || out.right[i] <= i || out.right[i] >= n {
			return tree{}, fmt.Errorf("node %d: child index out of range", i)
		}
		if out.splitIndex[i] < 0 || out.splitIndex[i] >= domain.FeatureCount {
			return tree{}, fmt.Errorf("node %d: split feature %d out of range", i, out.splitIndex[i])
		}
	}
	return out, nil
}

// leaf walks the tree for one row. NaN takes the node's default branch.
func (t *tree) leaf(x []float32) float32 {
	node := 0
	for t.left[node] != -1 {
		v := x[t.splitIndex[node]]
		switch {
		case v != v: // NaN
			if t.defaultLeft[node] {
				node = t.left[node]
			} else {
				node = t.right[node]
			}
		case v < t.splitCond[node]:
			node = t.left[node]
		default:
			node = t.right[node]
		}
	}
	return t.splitCond[node]
}

// Trees returns the number of trees in the ensemble.
func (e *Ensemble) Trees() int {
	return len(e.trees)
}

// Objective returns the training objective recorded in the model.
func (e *Ensemble) Objective() string {
	return e.objective
}

// Predict scores each row.
func (e *Ensemble) Predict(ctx context.Context, rows []domain.FeatureRow) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	x := make([]float32, domain.FeatureCount)
	for i, row := range rows {
		for j, v := range row.Values() {
			x[j] = float32(v)
		}
		margin := e.link.toMargin(e.baseScore)
		for k := range e.trees {
			margin += e.weights[k] * e.trees[k].leaf(x)
		}
		out[i] = float64(e.link.toOutput(margin))
	}
	return out, nil
}
