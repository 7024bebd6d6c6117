package model

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/rainfall-forecast/internal/domain"
)

// XGBoost is a binary:logistic gradient-boosted tree ensemble loaded from
// the JSON format written by Booster.save_model.
//
// Categorical features are encoded through the "categories" object at the
// top level of the artifact, which lists each categorical feature's labels
// in training code order.
type XGBoost struct {
	featureNames []string
	baseMargin   float64
	trees        []tree
	codes        map[string]map[string]int
}

type tree struct {
	left, right []int
	feature     []int
	cond        []float64 // leaf value on leaves
	split       []float32 // threshold on numeric splits
	defaultLeft []bool
	// cats is non-nil for categorical splits; codes in the set go right.
	cats []map[int]bool
}

type artifact struct {
	Learner struct {
		FeatureNames    []string `json:"feature_names"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Trees []treeJSON `json:"trees"`
			} `json:"model"`
		} `json:"gradient_booster"`
		LearnerModelParam struct {
			BaseScore string `json:"base_score"`
			NumClass  string `json:"num_class"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
	} `json:"learner"`
	Categories map[string][]string `json:"categories"`
}

type treeJSON struct {
	LeftChildren       []int     `json:"left_children"`
	RightChildren      []int     `json:"right_children"`
	SplitIndices       []int     `json:"split_indices"`
	SplitConditions    []float64 `json:"split_conditions"`
	DefaultLeft        []flag    `json:"default_left"`
	SplitType          []int     `json:"split_type"`
	Categories         []int     `json:"categories"`
	CategoriesNodes    []int     `json:"categories_nodes"`
	CategoriesSegments []int     `json:"categories_segments"`
	CategoriesSizes    []int     `json:"categories_sizes"`
}

// flag accepts both the 0/1 and true/false spellings xgboost has used.
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	switch strings.TrimSpace(string(b)) {
	case "1", "true":
		*f = true
	case "0", "false":
		*f = false
	default:
		return fmt.Errorf("invalid flag %s", b)
	}
	return nil
}

// LoadXGBoost reads a model artifact from disk.
func LoadXGBoost(path string) (*XGBoost, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	m, err := ParseXGBoost(f)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return m, nil
}

// ParseXGBoost decodes and validates a model artifact. The artifact's
// feature names must match domain.FeatureColumns exactly.
func ParseXGBoost(r io.Reader) (*XGBoost, error) {
	var a artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	l := a.Learner
	if obj := l.Objective.Name; obj != "binary:logistic" {
		return nil, fmt.Errorf("unsupported objective %q", obj)
	}
	if b := l.GradientBooster.Name; b != "gbtree" {
		return nil, fmt.Errorf("unsupported booster %q", b)
	}
	if n := l.LearnerModelParam.NumClass; n != "" && n != "0" && n != "1" {
		return nil, fmt.Errorf("unsupported num_class %s", n)
	}
	if !slices.Equal(l.FeatureNames, domain.FeatureColumns) {
		return nil, &domain.SchemaError{Msg: fmt.Sprintf("model features %v differ from %v", l.FeatureNames, domain.FeatureColumns)}
	}

	margin, err := baseMargin(l.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, err
	}

	m := &XGBoost{
		featureNames: l.FeatureNames,
		baseMargin:   margin,
		codes:        make(map[string]map[string]int),
	}

	for _, name := range domain.CategoricalColumns {
		labels, ok := a.Categories[name]
		if !ok {
			return nil, &domain.SchemaError{Feature: name, Msg: "no category labels in model"}
		}
		codes := make(map[string]int, len(labels))
		for i, label := range labels {
			codes[label] = i
		}
		m.codes[name] = codes
	}

	for i, tj := range l.GradientBooster.Model.Trees {
		t, err := newTree(tj, len(m.featureNames))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		m.trees = append(m.trees, t)
	}
	if len(m.trees) == 0 {
		return nil, fmt.Errorf("model has no trees")
	}
	return m, nil
}

// baseMargin converts the stored base_score probability to log-odds. Newer
// xgboost releases write it as a one-element vector.
func baseMargin(s string) (float64, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		s = "0.5"
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || p <= 0 || p >= 1 {
		return 0, fmt.Errorf("invalid base_score %q", s)
	}
	return math.Log(p / (1 - p)), nil
}

func newTree(tj treeJSON, nFeatures int) (tree, error) {
	n := len(tj.LeftChildren)
	if n == 0 {
		return tree{}, fmt.Errorf("empty tree")
	}
	for _, l := range []int{len(tj.RightChildren), len(tj.SplitIndices), len(tj.SplitConditions), len(tj.DefaultLeft)} {
		if l != n {
			return tree{}, fmt.Errorf("node arrays differ in length")
		}
	}

	t := tree{
		left:        tj.LeftChildren,
		right:       tj.RightChildren,
		feature:     tj.SplitIndices,
		cond:        tj.SplitConditions,
		split:       make([]float32, n),
		defaultLeft: make([]bool, n),
		cats:        make([]map[int]bool, n),
	}
	for i, d := range tj.DefaultLeft {
		t.defaultLeft[i] = bool(d)
	}
	for i, c := range tj.SplitConditions {
		t.split[i] = float32(c)
	}

	for i := 0; i < n; i++ {
		if t.left[i] == -1 {
			continue
		}
		// Children always follow their parent, so traversal terminates.
		if t.left[i] <= i || t.left[i] >= n || t.right[i] <= i || t.right[i] >= n {
			return tree{}, fmt.Errorf("node %d has invalid children", i)
		}
		if t.feature[i] < 0 || t.feature[i] >= nFeatures {
			return tree{}, fmt.Errorf("node %d splits on unknown feature %d", i, t.feature[i])
		}
	}

	if len(tj.CategoriesNodes) != len(tj.CategoriesSegments) || len(tj.CategoriesNodes) != len(tj.CategoriesSizes) {
		return tree{}, fmt.Errorf("category arrays differ in length")
	}
	for j, node := range tj.CategoriesNodes {
		if node < 0 || node >= n {
			return tree{}, fmt.Errorf("category node %d out of range", node)
		}
		seg, size := tj.CategoriesSegments[j], tj.CategoriesSizes[j]
		if seg < 0 || size < 0 || seg+size > len(tj.Categories) {
			return tree{}, fmt.Errorf("category segment for node %d out of range", node)
		}
		set := make(map[int]bool, size)
		for _, c := range tj.Categories[seg : seg+size] {
			set[c] = true
		}
		t.cats[node] = set
	}
	for i, st := range tj.SplitType {
		if st == 1 && t.left[i] != -1 && t.cats[i] == nil {
			return tree{}, fmt.Errorf("categorical node %d has no categories", i)
		}
	}
	return t, nil
}

// leaf walks the tree the way xgboost does: inputs and thresholds are
// compared as float32.
func (t tree) leaf(x []float32) float64 {
	n := 0
	for t.left[n] != -1 {
		v := x[t.feature[n]]
		var goLeft bool
		switch {
		case math.IsNaN(float64(v)):
			goLeft = t.defaultLeft[n]
		case t.cats[n] != nil:
			goLeft = !t.cats[n][int(v)]
		default:
			goLeft = v < t.split[n]
		}
		if goLeft {
			n = t.left[n]
		} else {
			n = t.right[n]
		}
	}
	return t.cond[n]
}

// encode maps features to the model's float32 input vector. Missing cells become NaN.
func (m *XGBoost) encode(features []domain.Feature) ([]float32, error) {
	if len(features) != len(m.featureNames) {
		return nil, &domain.SchemaError{Msg: fmt.Sprintf("got %d features, model expects %d", len(features), len(m.featureNames))}
	}

	x := make([]float32, len(features))
	for i, f := range features {
		if f.Name != m.featureNames[i] {
			return nil, &domain.SchemaError{Feature: f.Name, Msg: fmt.Sprintf("at position %d, model expects %q", i, m.featureNames[i])}
		}
		switch {
		case f.Missing():
			x[i] = float32(math.NaN())
		case f.Kind == domain.Categorical:
			code, ok := m.codes[f.Name][f.Cat]
			if !ok {
				return nil, &domain.SchemaError{Feature: f.Name, Msg: fmt.Sprintf("unknown category %q", f.Cat)}
			}
			x[i] = float32(code)
		default:
			x[i] = float32(*f.Num)
		}
	}
	return x, nil
}

// PredictProba returns the probability of the positive (rain) class.
func (m *XGBoost) PredictProba(features []domain.Feature) (float64, error) {
	x, err := m.encode(features)
	if err != nil {
		return 0, err
	}
	margin := m.baseMargin
	for _, t := range m.trees {
		margin += t.leaf(x)
	}
	return 1 / (1 + math.Exp(-margin)), nil
}

// PredictClass returns 1 when the positive class is more likely than not.
func (m *XGBoost) PredictClass(features []domain.Feature) (int, error) {
	p, err := m.PredictProba(features)
	if err != nil {
		return 0, err
	}
	if p > 0.5 {
		return 1, nil
	}
	return 0, nil
}
