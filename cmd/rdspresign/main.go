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

// Command rdspresign prints the presigned URL a cross-region RDS copy
// carries, without sending the request.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/aws/aws-sdk-go-v2/aws"
	humanize "github.com/dustin/go-humanize"
	"go.uber.org/cloudcall"
	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/auth"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/internal/clock"
	"go.uber.org/cloudcall/presign"
	"go.uber.org/cloudcall/service/rds"
	"go.uber.org/zap"
)

type cli struct {
	Snapshot snapshotCmd `cmd:"" help:"Presign a CopyDBSnapshot request."`
	Cluster  clusterCmd  `cmd:"" help:"Presign a CreateDBCluster read replica request."`
	Verbose  bool        `short:"v" help:"Log to stderr."`
}

// SigningFlags are shared by every command.
type SigningFlags struct {
	Config          string        `type:"existingfile" help:"cloudcall client YAML supplying region and credentials."`
	SourceRegion    string        `required:"" help:"Region the source resource lives in."`
	Region          string        `help:"Destination region the request is sent to."`
	AccessKeyID     string        `name:"access-key-id" env:"AWS_ACCESS_KEY_ID" help:"Access key id."`
	SecretAccessKey string        `env:"AWS_SECRET_ACCESS_KEY" help:"Secret access key."`
	SessionToken    string        `env:"AWS_SESSION_TOKEN" help:"Session token."`
	Expires         time.Duration `default:"168h" help:"Validity of the presigned URL."`
	Time            time.Time     `help:"Signing time in RFC 3339 form. Defaults to now."`
}

// attributes merges the flags over the optional config file.
func (f *SigningFlags) attributes() (*attribute.Bag, error) {
	var cfg cloudcall.Config
	if f.Config != "" {
		file, err := os.Open(f.Config)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		if cfg, err = cloudcall.LoadConfigFromYAML(file); err != nil {
			return nil, err
		}
	}

	region := firstNonEmpty(f.Region, cfg.Region)
	if region == "" {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"a destination region is required")
	}
	creds := aws.Credentials{
		AccessKeyID:     firstNonEmpty(f.AccessKeyID, cfg.Credentials.AccessKeyID),
		SecretAccessKey: firstNonEmpty(f.SecretAccessKey, cfg.Credentials.SecretAccessKey),
		SessionToken:    firstNonEmpty(f.SessionToken, cfg.Credentials.SessionToken),
	}

	attrs := attribute.NewBag()
	auth.SigningRegion.Put(attrs, region)
	auth.SigningName.Put(attrs, rds.SigningName)
	if creds.HasKeys() {
		auth.Credentials.Put(attrs, creds)
	}
	if !f.Time.IsZero() {
		auth.ClockOverride.Put(attrs, clock.NewFakeAt(f.Time))
	}
	return attrs, nil
}

func (f *SigningFlags) presignOptions() []presign.Option {
	return []presign.Option{presign.WithExpiry(f.Expires)}
}

type snapshotCmd struct {
	SigningFlags

	Source   string `required:"" help:"Identifier or ARN of the snapshot to copy."`
	Target   string `required:"" help:"Identifier of the copy."`
	KmsKeyID string `name:"kms-key-id" help:"KMS key encrypting the copy."`
}

func (c *snapshotCmd) Run(ctx context.Context, out io.Writer, logger *zap.Logger) error {
	attrs, err := c.attributes()
	if err != nil {
		return err
	}
	in := &rds.CopyDBSnapshotInput{
		SourceDBSnapshotIdentifier: &c.Source,
		TargetDBSnapshotIdentifier: &c.Target,
		KmsKeyId:                   optional(c.KmsKeyID),
		SourceRegion:               &c.SourceRegion,
	}
	got, err := rds.CopyDBSnapshotPresigner(c.presignOptions()...).
		ModifyRequest(ctx, interceptor.Context{Request: in}, attrs)
	if err != nil {
		return err
	}
	return printURL(out, logger, "CopyDBSnapshot", got.(*rds.CopyDBSnapshotInput).PreSignedUrl)
}

type clusterCmd struct {
	SigningFlags

	Cluster  string `required:"" help:"Identifier of the new cluster."`
	Source   string `required:"" help:"ARN of the cluster to replicate."`
	Engine   string `default:"aurora-mysql" help:"Database engine."`
	KmsKeyID string `name:"kms-key-id" help:"KMS key encrypting the replica."`
}

func (c *clusterCmd) Run(ctx context.Context, out io.Writer, logger *zap.Logger) error {
	attrs, err := c.attributes()
	if err != nil {
		return err
	}
	in := &rds.CreateDBClusterInput{
		DBClusterIdentifier:         &c.Cluster,
		ReplicationSourceIdentifier: &c.Source,
		Engine:                      &c.Engine,
		KmsKeyId:                    optional(c.KmsKeyID),
		SourceRegion:                &c.SourceRegion,
	}
	got, err := rds.CreateDBClusterPresigner(c.presignOptions()...).
		ModifyRequest(ctx, interceptor.Context{Request: in}, attrs)
	if err != nil {
		return err
	}
	return printURL(out, logger, "CreateDBCluster", got.(*rds.CreateDBClusterInput).PreSignedUrl)
}

func printURL(out io.Writer, logger *zap.Logger, op string, url *string) error {
	if url == nil {
		return cloudcallerrors.Newf(cloudcallerrors.CodeInternal, "%s request was not presigned", op)
	}
	logger.Debug("presigned request",
		zap.String("operation", op),
		zap.String("size", humanize.Bytes(uint64(len(*url)))))
	_, err := fmt.Fprintln(out, *url)
	return err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func newParser(c *cli, out io.Writer, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("rdspresign"),
		kong.Description("Print presigned URLs for cross-region RDS requests."),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
		kong.BindTo(out, (*io.Writer)(nil)),
		kong.UsageOnError(),
	}, options...)
	return kong.New(c, options...)
}

func run(args []string, out io.Writer, options ...kong.Option) error {
	var c cli
	parser, err := newParser(&c, out, options...)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if c.Verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
	}
	return kctx.Run(logger)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "rdspresign:", err)
		os.Exit(1)
	}
}
