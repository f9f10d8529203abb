package xerrors

var (
	// ErrInvalidInput 定价参数不在模型定义域内。
	ErrInvalidInput = New(ErrInvalidArg, 400002, "invalid input", "check your input parameters", nil)
	// ErrInvalidOptionType 无效的期权类型。
	ErrInvalidOptionType = New(ErrInvalidArg, 400004, "invalid option type", "supported types: call, put", nil)
	// ErrEmptyPriceRange 标的价格区间为空。
	ErrEmptyPriceRange = New(ErrInvalidArg, 400019, "empty price range", "underlying price range must not be empty", nil)
	// ErrInvalidRange 价格区间上下界或采样点数错误。
	ErrInvalidRange = New(ErrInvalidArg, 400020, "invalid price range", "range_high must exceed range_low and points must be at least 2", nil)
	// ErrUnsupportedFormat 不支持的图表输出格式。
	ErrUnsupportedFormat = New(ErrInvalidArg, 400021, "unsupported format", "supported formats: png, svg, pdf", nil)
	// ErrRenderFailed 图表渲染失败。
	ErrRenderFailed = New(ErrInternal, 500008, "render failed", "payoff diagram could not be rendered", nil)
)
