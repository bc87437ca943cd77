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

// Package auth signs wire requests.
//
// Signing inputs travel through the execution's attribute bag: the
// credentials, the signing region and the signing name. A clock override
// pins the signing time.
package auth

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/internal/clock"
)

// Signing attributes.
var (
	Credentials   = attribute.NewKey[aws.Credentials]("cloudcall.aws-credentials")
	SigningRegion = attribute.NewKey[string]("cloudcall.signing-region")
	SigningName   = attribute.NewKey[string]("cloudcall.signing-name")
	ClockOverride = attribute.NewKey[clock.Clock]("cloudcall.signing-clock")
)

// Params are the inputs of one signing pass.
type Params struct {
	Credentials aws.Credentials
	Region      string
	Name        string
	Time        time.Time
}

// ParamsFromAttributes reads signing parameters from attrs. The signing time
// is taken from the ClockOverride attribute when present, else from clk.
func ParamsFromAttributes(attrs *attribute.Bag, clk clock.Clock) (Params, error) {
	creds, ok := Credentials.Get(attrs)
	if !ok || !creds.HasKeys() {
		return Params{}, cloudcallerrors.Newf(cloudcallerrors.CodeClient, "no credentials to sign with")
	}
	region, ok := SigningRegion.Get(attrs)
	if !ok || region == "" {
		return Params{}, cloudcallerrors.Newf(cloudcallerrors.CodeClient, "no signing region")
	}
	name, ok := SigningName.Get(attrs)
	if !ok || name == "" {
		return Params{}, cloudcallerrors.Newf(cloudcallerrors.CodeClient, "no signing name")
	}
	if override, ok := ClockOverride.Get(attrs); ok && override != nil {
		clk = override
	}
	return Params{Credentials: creds, Region: region, Name: name, Time: clk.Now()}, nil
}

// Signer is the signing primitive.
type Signer interface {
	// Sign returns a copy of req carrying an authorization header.
	Sign(ctx context.Context, req *transport.Request, p Params) (*transport.Request, error)

	// Presign returns a URL for req that carries its own time-limited
	// authorization in the query string.
	Presign(ctx context.Context, req *transport.Request, p Params, expires time.Duration) (string, error)
}
