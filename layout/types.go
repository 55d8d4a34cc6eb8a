package layout

// 该文件定义图表布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。
// 所有坐标均为画布绝对坐标（单位：px，原点在左上角）。

// Result 保存布局后的图表元素与资源信息。
type Result struct {
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	Texts       []TextBox    `json:"texts"`
	Rects       []Rect       `json:"rects"`
	Lines       []Line       `json:"lines,omitempty"`
	Interaction Interaction  `json:"interaction"`
	Resources   ResourceSet  `json:"resources"`
	Meta        DocumentMeta `json:"meta"`
}

// ResourceSet 记录解析出的字体、颜色与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Colors map[string]Color        `json:"colors"`
	Styles map[string]Style        `json:"styles"`
}

// FontResource 描述字体资源：Src 用于测量与光栅化，Family 写入 SVG 的 font-family。
type FontResource struct {
	Name   string `json:"name"`
	Src    string `json:"src"`
	Style  string `json:"style"`
	Family string `json:"family"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Style 用于描述可继承的文本样式。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// Text roles.
const (
	RoleTitle    = "title"
	RoleCategory = "category" // 左侧轴的分类标签（会折行）
	RoleTick     = "tick"     // 底部数值轴刻度
	RoleValue    = "value"    // 柱子右侧的数值
)

// TextBox 表示一个已经排好坐标的文本块。X/Y 为锚点，DyEm 为基线偏移（em）。
type TextBox struct {
	Role     string     `json:"role"`
	Key      string     `json:"key,omitempty"`
	Content  string     `json:"content"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	DyEm     float64    `json:"dy"`
	Font     string     `json:"font"`
	FontSize float64    `json:"fontSize"`
	Color    Color      `json:"color"`
	Anchor   string     `json:"anchor,omitempty"` // start/middle/end，默认 start
	Lines    []TextLine `json:"lines,omitempty"`
}

// TextLine 表示折行后的一行，对应 SVG 中的一个 tspan。
type TextLine struct {
	Content string  `json:"content"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	DyEm    float64 `json:"dy"`
	Width   float64 `json:"width"`
}

// BaselineY 返回行的基线像素坐标。
func (l TextLine) BaselineY(fontSize float64) float64 { return l.Y + l.DyEm*fontSize }

// Line 表示一条线段（轴线或刻度线）。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // <=0 时由渲染器给默认值
}

// Rect 表示一个矩形（柱子）。
type Rect struct {
	Class       string  `json:"class,omitempty"`
	Key         string  `json:"key,omitempty"`
	Value       float64 `json:"value"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	FillColor   *Color  `json:"fillColor,omitempty"` // 为空表示不填充
	StrokeColor *Color  `json:"strokeColor,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Interaction 描述交互式输出（SVG/HTML）的悬停反馈；静态输出忽略。
type Interaction struct {
	HoverClass   string `json:"hoverClass"`
	HoverFill    *Color `json:"hoverFill,omitempty"`
	RestFill     *Color `json:"restFill,omitempty"`
	TransitionMs int    `json:"transitionMs"`
}

// DocumentMeta 保存输出文件的元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
