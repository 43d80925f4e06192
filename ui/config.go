package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Text is loaded into the editor on start. SeedText is used when empty.
	Text     string
	SeedText string `env:"BOLO_SEED_TEXT" envDefault:"Hello, मेरा नाम Yash है."`

	EnableMouse bool

	// For debugging the UI
	AltScreen bool `env:"BOLO_ALT_SCREEN" envDefault:"true"`
}

func (c Config) initialText() string {
	if c.Text != "" {
		return c.Text
	}
	return c.SeedText
}
