package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Transport: TransportConfig{
			Kind:           TransportSlack,
			TimeoutSeconds: 10,
		},
		Slack: SlackConfig{
			AllowMarkdown: true,
		},
		Journal: JournalConfig{
			Enabled: true,
			DBPath:  "~/.slackmsg/journal.db",
		},
	}
}
