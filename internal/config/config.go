package config

type Config interface {
	HTTPPort() string

	BaseURI() string
	PathPrefix() string
	Strict() bool

	BufferSize() int
	MaxBodyBytes() int64

	NoColor() bool
}

func MustLoad() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg, err := parse()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *config) HTTPPort() string    { return c.httpPort }
func (c *config) BaseURI() string     { return c.baseURI }
func (c *config) PathPrefix() string  { return c.pathPrefix }
func (c *config) Strict() bool        { return c.strict }
func (c *config) BufferSize() int     { return c.bufferSize }
func (c *config) MaxBodyBytes() int64 { return c.maxBodyBytes }
func (c *config) NoColor() bool       { return c.noColor }
