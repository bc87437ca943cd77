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

// Package endpoint resolves regional service endpoints.
package endpoint

import (
	"net/url"
	"sort"
	"strings"

	"go.uber.org/cloudcall/cloudcallerrors"
)

type partition struct {
	name      string
	dnsSuffix string
	regions   []string
}

var _partitions = []partition{
	{
		name:      "aws",
		dnsSuffix: "amazonaws.com",
		regions: []string{
			"af-south-1",
			"ap-east-1", "ap-northeast-1", "ap-northeast-2", "ap-northeast-3",
			"ap-south-1", "ap-south-2",
			"ap-southeast-1", "ap-southeast-2", "ap-southeast-3", "ap-southeast-4",
			"ca-central-1", "ca-west-1",
			"eu-central-1", "eu-central-2", "eu-north-1", "eu-south-1", "eu-south-2",
			"eu-west-1", "eu-west-2", "eu-west-3",
			"il-central-1",
			"me-central-1", "me-south-1",
			"sa-east-1",
			"us-east-1", "us-east-2", "us-west-1", "us-west-2",
		},
	},
	{
		name:      "aws-cn",
		dnsSuffix: "amazonaws.com.cn",
		regions:   []string{"cn-north-1", "cn-northwest-1"},
	},
	{
		name:      "aws-us-gov",
		dnsSuffix: "amazonaws.com",
		regions:   []string{"us-gov-east-1", "us-gov-west-1"},
	},
}

// Resolver maps region names to service endpoints. The zero value is not
// usable; use NewResolver or Default.
type Resolver struct {
	suffixes map[string]string
}

// Default knows every public region.
var Default = NewResolver()

// NewResolver returns a resolver knowing the public regions plus extra,
// which maps additional region names to DNS suffixes.
func NewResolver(extra ...map[string]string) *Resolver {
	r := &Resolver{suffixes: make(map[string]string)}
	for _, p := range _partitions {
		for _, region := range p.regions {
			r.suffixes[region] = p.dnsSuffix
		}
	}
	for _, m := range extra {
		for region, suffix := range m {
			r.suffixes[region] = suffix
		}
	}
	return r
}

// Resolve returns https://<service>.<region>.<suffix>. Unknown regions are
// a CodeClient error.
func (r *Resolver) Resolve(service, region string) (*url.URL, error) {
	suffix, ok := r.suffixes[strings.ToLower(region)]
	if !ok {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeClient, "cannot resolve %s endpoint for unknown region %q", service, region)
	}
	if service == "" {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeClient, "cannot resolve an endpoint without a service name")
	}
	return &url.URL{
		Scheme: "https",
		Host:   service + "." + strings.ToLower(region) + "." + suffix,
	}, nil
}

// Regions lists the regions r knows, sorted.
func (r *Resolver) Regions() []string {
	out := make([]string, 0, len(r.suffixes))
	for region := range r.suffixes {
		out = append(out, region)
	}
	sort.Strings(out)
	return out
}

// Resolve resolves against Default.
func Resolve(service, region string) (*url.URL, error) {
	return Default.Resolve(service, region)
}
