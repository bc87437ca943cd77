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

package handler

import "go.uber.org/cloudcall/api/attribute"

// Execution attributes maintained by the handler.
var (
	// ExecutionAttempt is the 1-based number of the current attempt. It is
	// updated before each attempt is prepared.
	ExecutionAttempt = attribute.NewKey[int]("cloudcall.execution-attempt")

	// IsFullDuplex marks operations that stream the request body while the
	// response is received.
	IsFullDuplex = attribute.NewKey[bool]("cloudcall.is-full-duplex")

	// OperationName is the name of the operation being executed.
	OperationName = attribute.NewKey[string]("cloudcall.operation-name")

	// ServiceName is the name of the called service.
	ServiceName = attribute.NewKey[string]("cloudcall.service-name")

	// Protocol is the wire protocol of the called service: "query", "ec2"
	// or "rest-xml".
	Protocol = attribute.NewKey[string]("cloudcall.protocol")
)

// Wire protocols understood by the bundled protocol packages.
const (
	ProtocolQuery   = "query"
	ProtocolEC2     = "ec2"
	ProtocolRESTXML = "rest-xml"
)
