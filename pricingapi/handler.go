package pricingapi

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/algorithm/finance"
	"github.com/wyfcoding/optionpricing/algorithm/types"
	"github.com/wyfcoding/optionpricing/breaker"
	"github.com/wyfcoding/optionpricing/cache"
	"github.com/wyfcoding/optionpricing/idgen"
	"github.com/wyfcoding/optionpricing/logging"
	"github.com/wyfcoding/optionpricing/metrics"
	"github.com/wyfcoding/optionpricing/payoff"
	"github.com/wyfcoding/optionpricing/response"
	"github.com/wyfcoding/optionpricing/xerrors"
)

// Handler 负责处理期权定价相关的 HTTP 请求
type Handler struct {
	calc     *finance.BlackScholesCalculator
	metrics  *metrics.Metrics
	diagrams *cache.Loader
	breaker  *breaker.Breaker
	logger   *logging.Logger
	opts     atomic.Pointer[Options]
}

// HandlerOption 处理器的可选依赖。
type HandlerOption func(*Handler)

// WithRenderBreaker 渲染链路接入熔断器，连续渲染失败后直接返回 503。
func WithRenderBreaker(b *breaker.Breaker) HandlerOption {
	return func(h *Handler) {
		h.breaker = b
	}
}

// NewHandler 创建处理器。diagrams 为 nil 时渲染结果不缓存，但并发的相同请求仍只渲染一次。
func NewHandler(opts Options, m *metrics.Metrics, diagrams *cache.Loader, logger *logging.Logger, hopts ...HandlerOption) *Handler {
	if diagrams == nil {
		diagrams = cache.NewLoader(nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if m != nil {
		diagrams.OnHit = m.CacheHits.Inc
		diagrams.OnMiss = m.CacheMisses.Inc
	}
	h := &Handler{
		calc:     finance.NewBlackScholesCalculator(),
		metrics:  m,
		diagrams: diagrams,
		logger:   logger,
	}
	for _, opt := range hopts {
		opt(h)
	}
	h.SetOptions(opts)
	return h
}

// SetOptions 原子替换运行参数，供配置热更新使用。
func (h *Handler) SetOptions(opts Options) {
	h.opts.Store(&opts)
}

func (h *Handler) options() Options {
	return *h.opts.Load()
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1/options")
	{
		api.POST("/price", h.Price)
		api.POST("/greeks", h.Greeks)
		api.POST("/parity", h.Parity)
		api.POST("/payoff", h.Payoff)
		for _, format := range []string{"png", "svg", "pdf"} {
			api.GET("/payoff."+format, h.Diagram(format))
		}
	}
}

// PriceResponse 定价结果。
type PriceResponse struct {
	QuoteID   string           `json:"quote_id"`
	Type      types.OptionType `json:"type"`
	Price     float64          `json:"price"`
	Intrinsic float64          `json:"intrinsic"`
	TimeValue float64          `json:"time_value"`
	Boundary  bool             `json:"boundary"`
}

// GreeksResponse 年化/单位口径的希腊字母，以及交易台口径的每日 theta 与每 1% vega/rho。
type GreeksResponse struct {
	finance.Greeks
	ThetaPerDay decimal.Decimal `json:"theta_per_day"`
	VegaPerPct  decimal.Decimal `json:"vega_per_pct"`
	RhoPerPct   decimal.Decimal `json:"rho_per_pct"`
}

// ParityResponse 同一组参数下的看涨、看跌价格及平价偏差。
type ParityResponse struct {
	Call             float64 `json:"call"`
	Put              float64 `json:"put"`
	ParityGap        float64 `json:"parity_gap"`
	DiscountedStrike float64 `json:"discounted_strike"`
}

// PayoffResponse 到期损益曲线与当前理论价值曲线。
type PayoffResponse struct {
	Type      types.OptionType       `json:"type,omitempty"`
	Strike    float64                `json:"strike"`
	Premium   float64                `json:"premium,omitempty"`
	Breakeven float64                `json:"breakeven,omitempty"`
	Spots     []float64              `json:"spots"`
	Payoff    []float64              `json:"payoff,omitempty"`
	Value     []float64              `json:"value,omitempty"`
	Combined  *payoff.CombinedPayoff `json:"combined,omitempty"`
	Premiums  *ParityResponse        `json:"premiums,omitempty"`
}

// Price 计算期权价格
func (h *Handler) Price(c *gin.Context) {
	var req OptionRequest
	if !h.bind(c, &req) {
		return
	}
	typ, p, err := h.typedParams(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	g, err := h.evaluate(typ, p, "price")
	if err != nil {
		response.Error(c, err)
		return
	}
	intrinsic := p.Intrinsic(typ)
	response.Success(c, PriceResponse{
		QuoteID:   idgen.GenQuoteNo(),
		Type:      typ,
		Price:     g.Price,
		Intrinsic: intrinsic,
		TimeValue: g.Price - intrinsic,
		Boundary:  g.Boundary,
	})
}

// Greeks 计算价格与全部希腊字母
func (h *Handler) Greeks(c *gin.Context) {
	var req OptionRequest
	if !h.bind(c, &req) {
		return
	}
	typ, p, err := h.typedParams(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	g, err := h.evaluate(typ, p, "greeks")
	if err != nil {
		response.Error(c, err)
		return
	}
	desk, err := h.calc.Calculate(typ,
		decimal.NewFromFloat(p.Spot), decimal.NewFromFloat(p.Strike), decimal.NewFromFloat(p.Expiry),
		decimal.NewFromFloat(p.Rate), decimal.NewFromFloat(p.Vol))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, GreeksResponse{
		Greeks:      g,
		ThetaPerDay: desk.Theta,
		VegaPerPct:  desk.Vega,
		RhoPerPct:   desk.Rho,
	})
}

// Parity 校验看涨看跌平价关系，请求中的 type 被忽略
func (h *Handler) Parity(c *gin.Context) {
	var req OptionRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := req.params(h.options())
	if err != nil {
		response.Error(c, err)
		return
	}
	prem, err := h.parity(p, "parity")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, prem)
}

// Payoff 返回到期损益曲线、理论价值曲线与盈亏平衡点
func (h *Handler) Payoff(c *gin.Context) {
	var req PayoffRequest
	if !h.bind(c, &req) {
		return
	}
	o := h.options()
	p, err := req.params(o)
	if err != nil {
		response.Error(c, err)
		return
	}
	spots, err := req.spots(o, p.Strike)
	if err != nil {
		response.Error(c, err)
		return
	}

	if req.Combined {
		prem, err := h.parity(p, "payoff")
		if err != nil {
			response.Error(c, err)
			return
		}
		combined := payoff.Combined(spots, p.Strike, prem.Call, prem.Put)
		response.Success(c, PayoffResponse{
			Strike:   p.Strike,
			Spots:    spots,
			Combined: &combined,
			Premiums: &prem,
		})
		return
	}

	typ, err := req.optionType()
	if err != nil {
		response.Error(c, err)
		return
	}
	g, err := h.evaluate(typ, p, "payoff")
	if err != nil {
		response.Error(c, err)
		return
	}
	premium := g.Price
	curve, err := finance.EvaluateRange(c.Request.Context(), typ, p, spots, o.Workers)
	if err != nil {
		response.Error(c, xerrors.Wrap(err, xerrors.ErrUnavailable, "evaluate price range"))
		return
	}
	value := make([]float64, len(curve))
	for i, g := range curve {
		value[i] = g.Price - premium
	}
	response.Success(c, PayoffResponse{
		Type:      typ,
		Strike:    p.Strike,
		Premium:   premium,
		Breakeven: payoff.Breakeven(p.Strike, premium, typ),
		Spots:     spots,
		Payoff:    payoff.Curve(spots, p.Strike, premium, typ),
		Value:     value,
	})
}

// Diagram 返回按 format 渲染损益图的处理函数，参数取自查询串。
// 相同的规范化参数命中缓存，并发的相同请求只渲染一次。
func (h *Handler) Diagram(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PayoffRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			response.Error(c, xerrors.Detailed(xerrors.ErrInvalidInput, "%v", err))
			return
		}
		o := h.options()
		p, err := req.params(o)
		if err != nil {
			response.Error(c, err)
			return
		}
		spots, err := req.spots(o, p.Strike)
		if err != nil {
			response.Error(c, err)
			return
		}
		var typ types.OptionType
		if !req.Combined {
			if typ, err = req.optionType(); err != nil {
				response.Error(c, err)
				return
			}
		}
		breakeven := req.showBreakeven(o)

		key := diagramKey(format, typ, p, spots, breakeven, o)
		data, cached, err := h.diagrams.Load(c.Request.Context(), key, func(ctx context.Context) ([]byte, error) {
			return breaker.Execute(h.breaker, func() ([]byte, error) {
				return h.render(ctx, format, typ, p, spots, breakeven, o)
			})
		})
		if err != nil {
			logging.Error(c.Request.Context(), "failed to render payoff diagram", "format", format, "error", err)
			response.Error(c, err)
			return
		}
		if cached {
			c.Header("X-Cache", "HIT")
		} else {
			c.Header("X-Cache", "MISS")
		}
		c.Data(http.StatusOK, payoff.ContentType(format), data)
	}
}

func (h *Handler) render(ctx context.Context, format string, typ types.OptionType, p finance.Params, spots []float64, breakeven bool, o Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, xerrors.Wrap(err, xerrors.ErrUnavailable, "render cancelled")
	}
	done := logging.LogDuration(ctx, "render payoff diagram", "format", format, "type", typ.String())
	defer done()

	var (
		d   *payoff.Diagram
		err error
	)
	if typ == 0 {
		prem, perr := h.parity(p, "diagram")
		if perr != nil {
			return nil, perr
		}
		d, err = payoff.NewCombinedDiagram(spots, p.Strike, prem.Call, prem.Put, breakeven)
	} else {
		g, gerr := h.evaluate(typ, p, "diagram")
		if gerr != nil {
			return nil, gerr
		}
		d, err = payoff.NewDiagram(spots, p.Strike, g.Price, typ, breakeven)
	}
	if err != nil {
		return nil, err
	}
	d.Width, d.Height = o.Width, o.Height

	var buf bytes.Buffer
	if err := d.Render(&buf, format); err != nil {
		return nil, err
	}
	if h.metrics != nil {
		h.metrics.DiagramsRendered.WithLabelValues(format).Inc()
	}
	return buf.Bytes(), nil
}

// diagramKey 规范化后的缓存键，浮点数按最短精确表示写入。
func diagramKey(format string, typ types.OptionType, p finance.Params, spots []float64, breakeven bool, o Options) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	kind := "combined"
	if typ != 0 {
		kind = typ.String()
	}
	parts := []string{
		format, kind,
		f(p.Spot), f(p.Strike), f(p.Expiry), f(p.Rate), f(p.Vol),
		f(spots[0]), f(spots[len(spots)-1]), strconv.Itoa(len(spots)),
		strconv.FormatBool(breakeven),
		f(float64(o.Width)), f(float64(o.Height)),
	}
	return strings.Join(parts, "|")
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, xerrors.Detailed(xerrors.ErrInvalidInput, "malformed request body: %v", err))
		return false
	}
	return true
}

func (h *Handler) typedParams(req OptionRequest) (types.OptionType, finance.Params, error) {
	typ, err := req.optionType()
	if err != nil {
		return 0, finance.Params{}, err
	}
	p, err := req.params(h.options())
	if err != nil {
		return 0, finance.Params{}, err
	}
	return typ, p, nil
}

// evaluate 求值并拒绝溢出为 Inf/NaN 的结果，参数已在 params 中校验过定义域。
func (h *Handler) evaluate(typ types.OptionType, p finance.Params, kind string) (finance.Greeks, error) {
	g := finance.Evaluate(typ, p)
	h.observe(typ, g.Boundary, kind)
	if err := g.Validate(); err != nil {
		return finance.Greeks{}, err
	}
	return g, nil
}

func (h *Handler) parity(p finance.Params, kind string) (ParityResponse, error) {
	call, err := h.evaluate(types.OptionTypeCall, p, kind)
	if err != nil {
		return ParityResponse{}, err
	}
	put, err := h.evaluate(types.OptionTypePut, p, kind)
	if err != nil {
		return ParityResponse{}, err
	}
	disc := p.Strike * p.Discount()
	return ParityResponse{
		Call:             call.Price,
		Put:              put.Price,
		ParityGap:        (call.Price + disc) - (put.Price + p.Spot),
		DiscountedStrike: disc,
	}, nil
}

func (h *Handler) observe(typ types.OptionType, boundary bool, kind string) {
	if h.metrics == nil {
		return
	}
	h.metrics.OptionEvaluations.WithLabelValues(typ.String(), kind).Inc()
	if boundary {
		h.metrics.BoundaryEvaluations.WithLabelValues(typ.String()).Inc()
		h.logger.Debug("boundary evaluation", "type", typ.String(), "kind", kind)
	}
}
