package app

import (
	"github.com/viant/storefront"
)

// Options represents storefront command line options
type Options struct {
	storefront.ClientOptions
	ConfigURL   string `short:"c" long:"config" env:"STOREFRONT_CONFIG" description:"YAML config file (local path or afs URL)"`
	Email       string `short:"e" long:"email" env:"STOREFRONT_EMAIL" description:"login email"`
	Password    string `short:"p" long:"password" env:"STOREFRONT_PASSWORD" description:"login password"`
	Method      string `short:"X" long:"method" default:"GET" description:"http method used by the get command"`
	Data        string `short:"d" long:"data" description:"request body used by the get command"`
	Concurrency int    `short:"n" long:"concurrency" default:"10" description:"concurrent calls fired by the demo command"`
	MetricsFile string `long:"metrics-file" description:"write session metrics in text exposition format after the command"`
	Args        struct {
		Command string `positional-arg-name:"command" description:"login | logout | me | token | get | demo"`
		Path    string `positional-arg-name:"path" description:"api path used by the get command, i.e. /api/cart"`
	} `positional-args:"yes"`
}
