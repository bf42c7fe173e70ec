package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	BaseURL     string
	Debug       bool
}

func ParseFlags(args []string) (cfg Config, err error) {
	flags := flag.NewFlagSet("evalhub", flag.ContinueOnError)

	var host string
	flags.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	flags.UintVar(&port, "port", 8080, "listen port number")
	flags.StringVar(&cfg.DBUrl, "db-url", "evalhub.sqlite", "path to SQLite3 DB file")
	flags.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for token encryption and decryption")
	var ttl uint
	flags.UintVar(&ttl, "token-ttl", 120, "token TTL in seconds")
	flags.StringVar(&cfg.BaseURL, "base-url", "", "public base URL used in shared survey links (defaults to the listen address)")
	flags.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")

	err = flags.Parse(args)
	if err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = strings.Replace(url, "0.0.0.0", "localhost", 1)
	url = "http://" + url
	return
}

// SurveyURL is the public respondent-facing address of a survey,
// the one encoded into shared QR codes.
func (cfg Config) SurveyURL(surveyID int64) string {
	base := cfg.BaseURL
	if base == "" {
		base = cfg.Url()
	}
	return fmt.Sprintf("%s/api/surveys/%d", strings.TrimSuffix(base, "/"), surveyID)
}
