// 日志配置选项，既可以从 YAML 读取，也可以通过函数式选项设置
package logger

// Options 日志配置选项
type Options struct {
	Level            string          `yaml:"level"`             // 日志级别
	Format           string          `yaml:"format"`            // json/console
	OutputPaths      []string        `yaml:"output_paths"`      // 输出路径列表
	ErrorPaths       []string        `yaml:"error_paths"`       // 错误日志输出路径列表
	EnableCaller     bool            `yaml:"enable_caller"`     // 是否记录调用位置
	EnableStacktrace bool            `yaml:"enable_stacktrace"` // 是否记录堆栈
	StacktraceLevel  string          `yaml:"stacktrace_level"`  // 堆栈记录级别
	Rotation         RotationOptions `yaml:"rotation"`          // 日志轮转配置
}

// RotationOptions 日志轮转配置选项
type RotationOptions struct {
	Enabled      bool   `yaml:"enabled"`
	Policy       string `yaml:"policy"`        // time/size/size_and_time
	TimeInterval string `yaml:"time_interval"` // minute/hour/day
	MaxSize      int    `yaml:"max_size"`      // MB
	MaxBackups   int    `yaml:"max_backups"`
	MaxAge       int    `yaml:"max_age"` // 单位由 TimeInterval 决定
	Compress     bool   `yaml:"compress"`
}

// DefaultOptions 返回默认配置：info 级别，控制台格式输出到 stdout
func DefaultOptions() Options {
	return Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stdout"},
		ErrorPaths:       []string{"stderr"},
		EnableCaller:     true,
		EnableStacktrace: true,
		StacktraceLevel:  "panic",
		Rotation: RotationOptions{
			Policy:       "time",
			TimeInterval: "day",
			MaxSize:      100,
			MaxBackups:   7,
			MaxAge:       30,
			Compress:     true,
		},
	}
}

// Option 函数类型，用于修改Options
type Option func(*Options)

func WithLevel(level string) Option {
	return func(o *Options) {
		o.Level = level
	}
}

func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

func WithOutputPaths(paths []string) Option {
	return func(o *Options) {
		o.OutputPaths = paths
	}
}

func WithErrorPaths(paths []string) Option {
	return func(o *Options) {
		o.ErrorPaths = paths
	}
}

func WithRotation(rotation RotationOptions) Option {
	return func(o *Options) {
		o.Rotation = rotation
	}
}
