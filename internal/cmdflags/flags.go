package cmdflags

import (
	"github.com/urfave/cli/v2"
)

func Config(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = "config.yaml"
	}
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to the yaml configuration file",
		Value:       *out,
		Destination: out,
	}
}

func Port(out *int) cli.Flag {
	return &cli.IntFlag{
		Name:        "port",
		Aliases:     []string{"p"},
		Usage:       "Port to listen on, overrides the configuration file",
		Value:       *out,
		Destination: out,
	}
}
