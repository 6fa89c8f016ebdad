package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. The transcode quality is not
// range-checked: it is handed to the encoder verbatim.
func (c *Config) Validate() error {
	if err := c.validateSplit(); err != nil {
		return err
	}
	if err := c.validateTranscode(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSplit() error {
	if strings.ContainsAny(c.Split.ContainerExt, `/\. `) {
		return fmt.Errorf("split.container_ext %q must be a bare extension such as m4b", c.Split.ContainerExt)
	}
	return nil
}

func (c *Config) validateTranscode() error {
	if c.Transcode.Workers < 0 {
		return errors.New("transcode.workers must be >= 0")
	}
	if strings.ContainsAny(c.Transcode.Extension, `/\. `) {
		return fmt.Errorf("transcode.extension %q must be a bare extension such as mp3", c.Transcode.Extension)
	}
	if c.Split.ContainerExt != "" && c.Split.ContainerExt == c.Transcode.Extension {
		return errors.New("transcode.extension must differ from split.container_ext")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
