// Copyright (c) 2025 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cloudcall

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/cloudcall/handler"
	"go.uber.org/cloudcall/internal/config"
	"go.uber.org/cloudcall/internal/humanize"
	"go.uber.org/cloudcall/internal/interpolate"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

// Config describes one service client.
type Config struct {
	// Service is the endpoint prefix of the service, e.g. "rds".
	Service string `config:"service"`

	// SigningName is the name requests are signed for. Defaults to Service.
	SigningName string `config:"signingName"`

	// Region the client talks to. It is also the signing region.
	Region string `config:"region"`

	// Endpoint overrides the endpoint resolved from Service and Region.
	Endpoint string `config:"endpoint,interpolate"`

	// Protocol is the wire protocol: "query", "ec2" or "rest-xml".
	Protocol string `config:"protocol"`

	Credentials CredentialsConfig `config:"credentials"`
	Retry       RetryConfig       `config:"retry"`
	HTTP        HTTPConfig        `config:"http"`

	// Attributes seed the attribute bag of every execution. Names must
	// refer to registered attribute keys.
	Attributes config.Map `config:"attributes"`
}

// CredentialsConfig holds static credentials.
type CredentialsConfig struct {
	AccessKeyID     string `config:"accessKeyId,interpolate"`
	SecretAccessKey string `config:"secretAccessKey,interpolate"`
	SessionToken    string `config:"sessionToken,interpolate"`
}

// AWS converts the configuration into SDK credentials.
func (c CredentialsConfig) AWS() aws.Credentials {
	return aws.Credentials{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
		Source:          "cloudcall config",
	}
}

// RetryConfig configures retries of retryable failures.
type RetryConfig struct {
	// MaxAttempts counts the first attempt. Zero or one disables retries.
	MaxAttempts int           `config:"maxAttempts"`
	Backoff     BackoffConfig `config:"backoff"`
}

// BackoffConfig configures exponential backoff between attempts. Retries
// are immediate when Base is zero.
type BackoffConfig struct {
	Base time.Duration `config:"base"`
	Max  time.Duration `config:"max"`
}

// HTTPConfig configures the default HTTP outbound.
type HTTPConfig struct {
	KeepAlive             time.Duration `config:"keepAlive"`
	MaxIdleConnsPerHost   int           `config:"maxIdleConnsPerHost"`
	ResponseHeaderTimeout time.Duration `config:"responseHeaderTimeout"`
	ConnTimeout           time.Duration `config:"connTimeout"`
	EnableHTTP2           bool          `config:"enableHTTP2"`
}

var _protocols = map[string]struct{}{
	handler.ProtocolQuery:   {},
	handler.ProtocolEC2:     {},
	handler.ProtocolRESTXML: {},
}

func protocolNames() []string {
	names := make([]string, 0, len(_protocols))
	for name := range _protocols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate reports every problem with c.
func (c Config) Validate() (err error) {
	if c.Service == "" {
		err = multierr.Append(err, fmt.Errorf("service is required"))
	}
	if c.Region == "" && c.Endpoint == "" {
		err = multierr.Append(err, fmt.Errorf("region or endpoint is required"))
	}
	if c.Endpoint != "" {
		if u, perr := url.Parse(c.Endpoint); perr != nil || u.Scheme == "" || u.Host == "" {
			err = multierr.Append(err, fmt.Errorf("endpoint %q is not an absolute URL", c.Endpoint))
		}
	}
	if _, ok := _protocols[c.Protocol]; !ok {
		err = multierr.Append(err, fmt.Errorf("unknown protocol %q: expected %s",
			c.Protocol, humanize.QuotedJoin(protocolNames(), "or", "nothing")))
	}
	if (c.Credentials.AccessKeyID == "") != (c.Credentials.SecretAccessKey == "") {
		err = multierr.Append(err, fmt.Errorf("credentials need both an access key id and a secret access key"))
	}
	if c.Retry.MaxAttempts < 0 {
		err = multierr.Append(err, fmt.Errorf("retry.maxAttempts must not be negative, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.Backoff.Max != 0 && c.Retry.Backoff.Max < c.Retry.Backoff.Base {
		err = multierr.Append(err, fmt.Errorf("retry.backoff.max %v is below retry.backoff.base %v",
			c.Retry.Backoff.Max, c.Retry.Backoff.Base))
	}
	return err
}

func (c Config) signingName() string {
	if c.SigningName != "" {
		return c.SigningName
	}
	return c.Service
}

// LoadOption customizes configuration loading.
type LoadOption func(*loadOptions)

type loadOptions struct {
	lookup interpolate.VariableResolver
}

// InterpolationResolver renders ${NAME} references with resolve instead
// of the environment.
func InterpolationResolver(resolve func(name string) (string, bool)) LoadOption {
	return func(o *loadOptions) {
		o.lookup = resolve
	}
}

// LoadConfigFromYAML reads a Config from YAML and validates it.
func LoadConfigFromYAML(r io.Reader, opts ...LoadOption) (Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(b, &data); err != nil {
		return Config{}, err
	}
	return LoadConfig(data, opts...)
}

// LoadConfig decodes a Config from a map[string]interface{} or
// map[interface{}]interface{} and validates it.
func LoadConfig(data interface{}, opts ...LoadOption) (Config, error) {
	o := loadOptions{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg Config
	if err := config.DecodeInto(&cfg, data, config.InterpolateWith(o.lookup)); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
