package forecast

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ── 梯度提升回归树 ────────────────────────────────────────────
//
// 平方损失下梯度 g = ŷ - y，二阶导恒为 1，叶子权重 w = -G/(n+λ)。
// 特征先按分位数分箱，节点分裂在直方图上搜索。
// 两种生长策略对应两个模型族：
//   - LeafWise:  每次分裂增益最大的叶子，受 MaxLeaves 限制（lgbm）
//   - DepthWise: 按层展开，受 MaxDepth 限制（xgboost）
// 不做行/列采样，同样的训练集总是得到同样的模型。
// ─────────────────────────────────────────────────────────────

// Growth 树生长策略
type Growth int

const (
	DepthWise Growth = iota
	LeafWise
)

// BoostingParams 梯度提升超参数
type BoostingParams struct {
	Rounds         int
	LearningRate   float64
	MaxDepth       int // 0 表示不限
	MaxLeaves      int // 0 表示不限
	MinSamplesLeaf int
	Lambda         float64
	MaxBins        int
	Growth         Growth
}

// DefaultLGBMParams LightGBM 回归默认参数
func DefaultLGBMParams() BoostingParams {
	return BoostingParams{
		Rounds:         100,
		LearningRate:   0.1,
		MaxLeaves:      31,
		MinSamplesLeaf: 20,
		MaxBins:        255,
		Growth:         LeafWise,
	}
}

// DefaultXGBoostParams XGBoost 回归参数（n_estimators=1000）
func DefaultXGBoostParams() BoostingParams {
	return BoostingParams{
		Rounds:         1000,
		LearningRate:   0.3,
		MaxDepth:       6,
		MinSamplesLeaf: 1,
		Lambda:         1,
		MaxBins:        256,
		Growth:         DepthWise,
	}
}

func (p BoostingParams) withDefaults(def BoostingParams) BoostingParams {
	if p.Rounds <= 0 {
		p.Rounds = def.Rounds
	}
	if p.LearningRate <= 0 {
		p.LearningRate = def.LearningRate
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = def.MaxDepth
	}
	if p.MaxLeaves <= 0 {
		p.MaxLeaves = def.MaxLeaves
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = def.MinSamplesLeaf
	}
	if p.Lambda <= 0 {
		p.Lambda = def.Lambda
	}
	if p.MaxBins <= 1 {
		p.MaxBins = def.MaxBins
	}
	p.Growth = def.Growth
	return p
}

// GradientBoosting 梯度提升回归模型
type GradientBoosting struct {
	params BoostingParams
	width  int
	base   float64
	trees  []regressionTree
}

// NewGradientBoosting 创建未训练的梯度提升模型
func NewGradientBoosting(params BoostingParams) *GradientBoosting {
	if params.MinSamplesLeaf < 1 {
		params.MinSamplesLeaf = 1
	}
	if params.MaxBins < 2 {
		params.MaxBins = 2
	}
	return &GradientBoosting{params: params}
}

// Fit 训练模型，重复调用会丢弃之前的结果
func (m *GradientBoosting) Fit(features [][]float64, labels []float64) error {
	width, err := checkTrainingSet(features, labels)
	if err != nil {
		return err
	}
	if m.params.Rounds < 1 || m.params.LearningRate <= 0 {
		return computationErrorf("迭代轮数与学习率必须为正数")
	}

	n := len(labels)
	b := newBinner(features, m.params.MaxBins)

	m.width = width
	m.base = floats.Sum(labels) / float64(n)
	m.trees = m.trees[:0]

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = m.base
	}
	grad := make([]float64, n)
	grower := newTreeGrower(b, m.params)

	for round := 0; round < m.params.Rounds; round++ {
		for i := range grad {
			grad[i] = pred[i] - labels[i]
		}
		if floats.Norm(grad, math.Inf(1)) < 1e-12 {
			break
		}

		tree := grower.grow(grad)
		m.trees = append(m.trees, tree)
		for i := range pred {
			pred[i] += m.params.LearningRate * tree.predict(features[i])
		}
	}
	return nil
}

// Predict 预测单行
func (m *GradientBoosting) Predict(features []float64) (float64, error) {
	if m.width == 0 {
		return 0, computationErrorf("模型尚未训练")
	}
	if len(features) != m.width {
		return 0, computationErrorf("特征维度 %d，期望 %d", len(features), m.width)
	}
	out := m.base
	for i := range m.trees {
		out += m.params.LearningRate * m.trees[i].predict(features)
	}
	return out, nil
}

// NumTrees 已训练的树数量
func (m *GradientBoosting) NumTrees() int { return len(m.trees) }

// ── 分箱 ──

type binner struct {
	bounds [][]float64 // 每列升序切分点，x ≤ bounds[b] 即落入 ≤ b 的箱
	cols   [][]int32   // 列优先的箱号
}

func newBinner(features [][]float64, maxBins int) *binner {
	n, width := len(features), len(features[0])
	b := &binner{
		bounds: make([][]float64, width),
		cols:   make([][]int32, width),
	}

	col := make([]float64, n)
	for j := 0; j < width; j++ {
		for i := range features {
			col[i] = features[i][j]
		}
		b.bounds[j] = cutPoints(col, maxBins)

		bins := make([]int32, n)
		for i, v := range col {
			bins[i] = int32(sort.SearchFloat64s(b.bounds[j], v))
		}
		b.cols[j] = bins
	}
	return b
}

// cutPoints 取唯一值之间的中点作为切分点，唯一值过多时按分位数抽取
func cutPoints(values []float64, maxBins int) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	uniq := sorted[:0:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			uniq = append(uniq, v)
		}
	}
	if len(uniq) < 2 {
		return nil
	}

	var cuts []float64
	if len(uniq) <= maxBins {
		cuts = make([]float64, 0, len(uniq)-1)
		for i := 1; i < len(uniq); i++ {
			cuts = append(cuts, (uniq[i-1]+uniq[i])/2)
		}
		return cuts
	}

	cuts = make([]float64, 0, maxBins-1)
	for k := 1; k < maxBins; k++ {
		idx := k * len(uniq) / maxBins
		if idx < 1 {
			continue
		}
		c := (uniq[idx-1] + uniq[idx]) / 2
		if len(cuts) == 0 || c > cuts[len(cuts)-1] {
			cuts = append(cuts, c)
		}
	}
	return cuts
}

// ── 回归树 ──

type treeNode struct {
	feature   int
	threshold float64
	left      int // -1 表示叶子
	right     int
	value     float64
}

type regressionTree struct {
	nodes []treeNode
}

func (t *regressionTree) predict(x []float64) float64 {
	i := 0
	for t.nodes[i].left >= 0 {
		nd := &t.nodes[i]
		if x[nd.feature] <= nd.threshold {
			i = nd.left
		} else {
			i = nd.right
		}
	}
	return t.nodes[i].value
}

type split struct {
	feature int
	bin     int
	gain    float64
}

type candidate struct {
	node  int
	idx   []int
	depth int
	best  split
	ok    bool
}

type treeGrower struct {
	b      *binner
	params BoostingParams
	sumG   []float64
	count  []int
}

func newTreeGrower(b *binner, params BoostingParams) *treeGrower {
	maxBins := 1
	for _, bounds := range b.bounds {
		if len(bounds)+1 > maxBins {
			maxBins = len(bounds) + 1
		}
	}
	return &treeGrower{
		b:      b,
		params: params,
		sumG:   make([]float64, maxBins),
		count:  make([]int, maxBins),
	}
}

func (g *treeGrower) leafValue(grad []float64, idx []int) float64 {
	sum := 0.0
	for _, i := range idx {
		sum += grad[i]
	}
	return -sum / (float64(len(idx)) + g.params.Lambda)
}

func (g *treeGrower) grow(grad []float64) regressionTree {
	all := make([]int, len(grad))
	for i := range all {
		all[i] = i
	}

	tree := regressionTree{nodes: []treeNode{{left: -1, right: -1, value: g.leafValue(grad, all)}}}
	frontier := []*candidate{g.evaluate(grad, 0, all, 0)}
	leaves := 1

	for len(frontier) > 0 {
		if g.params.MaxLeaves > 0 && leaves >= g.params.MaxLeaves {
			break
		}

		pick := 0
		if g.params.Growth == LeafWise {
			for k, c := range frontier {
				if c.best.gain > frontier[pick].best.gain {
					pick = k
				}
			}
		}
		c := frontier[pick]
		frontier = append(frontier[:pick], frontier[pick+1:]...)
		if !c.ok {
			continue
		}

		bins := g.b.cols[c.best.feature]
		var leftIdx, rightIdx []int
		for _, i := range c.idx {
			if int(bins[i]) <= c.best.bin {
				leftIdx = append(leftIdx, i)
			} else {
				rightIdx = append(rightIdx, i)
			}
		}

		li, ri := len(tree.nodes), len(tree.nodes)+1
		tree.nodes = append(tree.nodes,
			treeNode{left: -1, right: -1, value: g.leafValue(grad, leftIdx)},
			treeNode{left: -1, right: -1, value: g.leafValue(grad, rightIdx)},
		)
		nd := &tree.nodes[c.node]
		nd.feature = c.best.feature
		nd.threshold = g.b.bounds[c.best.feature][c.best.bin]
		nd.left, nd.right = li, ri
		leaves++

		frontier = append(frontier,
			g.evaluate(grad, li, leftIdx, c.depth+1),
			g.evaluate(grad, ri, rightIdx, c.depth+1),
		)
	}
	return tree
}

// evaluate 在直方图上为节点寻找增益最大的切分
func (g *treeGrower) evaluate(grad []float64, node int, idx []int, depth int) *candidate {
	c := &candidate{node: node, idx: idx, depth: depth}
	if g.params.MaxDepth > 0 && depth >= g.params.MaxDepth {
		return c
	}
	minLeaf := g.params.MinSamplesLeaf
	if len(idx) < 2*minLeaf {
		return c
	}

	lambda := g.params.Lambda
	total := 0.0
	for _, i := range idx {
		total += grad[i]
	}
	n := len(idx)
	parent := total * total / (float64(n) + lambda)

	for j, bounds := range g.b.bounds {
		nb := len(bounds) + 1
		if nb < 2 {
			continue
		}
		sumG, count := g.sumG[:nb], g.count[:nb]
		for k := range sumG {
			sumG[k], count[k] = 0, 0
		}
		bins := g.b.cols[j]
		for _, i := range idx {
			sumG[bins[i]] += grad[i]
			count[bins[i]]++
		}

		gl, nl := 0.0, 0
		for bin := 0; bin < nb-1; bin++ {
			gl += sumG[bin]
			nl += count[bin]
			nr := n - nl
			if nl < minLeaf {
				continue
			}
			if nr < minLeaf {
				break
			}
			gr := total - gl
			gain := gl*gl/(float64(nl)+lambda) + gr*gr/(float64(nr)+lambda) - parent
			if gain > 1e-12 && (!c.ok || gain > c.best.gain) {
				c.best = split{feature: j, bin: bin, gain: gain}
				c.ok = true
			}
		}
	}
	return c
}
