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

package http

import (
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

type outboundOptions struct {
	keepAlive             time.Duration
	maxIdleConns          int
	maxIdleConnsPerHost   int
	idleConnTimeout       time.Duration
	responseHeaderTimeout time.Duration
	connTimeout           time.Duration
	disableCompression    bool
	http2                 bool
	client                *http.Client
	logger                *zap.Logger
}

var defaultOutboundOptions = outboundOptions{
	keepAlive:           30 * time.Second,
	maxIdleConnsPerHost: 2,
	idleConnTimeout:     90 * time.Second,
	connTimeout:         500 * time.Millisecond,
}

// OutboundOption customizes an Outbound.
type OutboundOption func(*outboundOptions)

// KeepAlive specifies the keep-alive period for network connections. If
// zero, keep-alives are disabled.
//
// Defaults to 30 seconds.
func KeepAlive(t time.Duration) OutboundOption {
	return func(o *outboundOptions) {
		o.keepAlive = t
	}
}

// MaxIdleConns limits idle connections across all hosts. Zero means no
// limit.
func MaxIdleConns(i int) OutboundOption {
	return func(o *outboundOptions) {
		o.maxIdleConns = i
	}
}

// MaxIdleConnsPerHost limits idle connections kept per host.
//
// Defaults to 2 connections.
func MaxIdleConnsPerHost(i int) OutboundOption {
	return func(o *outboundOptions) {
		o.maxIdleConnsPerHost = i
	}
}

// IdleConnTimeout closes connections idle for longer than t.
//
// Defaults to 90 seconds.
func IdleConnTimeout(t time.Duration) OutboundOption {
	return func(o *outboundOptions) {
		o.idleConnTimeout = t
	}
}

// ResponseHeaderTimeout bounds the wait for response headers once the
// request is written. Zero means no timeout.
func ResponseHeaderTimeout(t time.Duration) OutboundOption {
	return func(o *outboundOptions) {
		o.responseHeaderTimeout = t
	}
}

// ConnTimeout bounds how long dialing a connection may take.
//
// Defaults to 500 milliseconds.
func ConnTimeout(t time.Duration) OutboundOption {
	return func(o *outboundOptions) {
		o.connTimeout = t
	}
}

// DisableCompression stops the outbound from asking for gzip responses.
func DisableCompression() OutboundOption {
	return func(o *outboundOptions) {
		o.disableCompression = true
	}
}

// EnableHTTP2 negotiates HTTP/2 over TLS connections.
func EnableHTTP2() OutboundOption {
	return func(o *outboundOptions) {
		o.http2 = true
	}
}

// WithClient sends requests with c. Connection options are ignored.
func WithClient(c *http.Client) OutboundOption {
	return func(o *outboundOptions) {
		o.client = c
	}
}

// Logger sets the logger of the outbound.
func Logger(l *zap.Logger) OutboundOption {
	return func(o *outboundOptions) {
		o.logger = l
	}
}

func buildClient(o *outboundOptions) (*http.Client, error) {
	if o.client != nil {
		return o.client, nil
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   o.connTimeout,
			KeepAlive: o.keepAlive,
		}).DialContext,
		MaxIdleConns:          o.maxIdleConns,
		MaxIdleConnsPerHost:   o.maxIdleConnsPerHost,
		IdleConnTimeout:       o.idleConnTimeout,
		DisableKeepAlives:     o.keepAlive == 0,
		DisableCompression:    o.disableCompression,
		ResponseHeaderTimeout: o.responseHeaderTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
	}
	if o.http2 {
		if err := http2.ConfigureTransport(t); err != nil {
			return nil, err
		}
	}
	return &http.Client{Transport: t}, nil
}
