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

// Package cloudcall builds clients for AWS-style cloud services.
//
// A Client binds a service's configuration (region, endpoint, credentials,
// wire protocol and retry policy) to an outbound and the interceptors every
// call goes through. Service packages such as service/rds and service/s3
// execute their operations through the handlers a Client builds.
//
// Configuration
//
// Clients may be configured from YAML:
//
// 	service: rds
// 	region: us-west-2
// 	protocol: query
// 	credentials:
// 	  accessKeyId: ${AWS_ACCESS_KEY_ID}
// 	  secretAccessKey: ${AWS_SECRET_ACCESS_KEY}
// 	retry:
// 	  maxAttempts: 3
// 	  backoff:
// 	    base: 100ms
// 	    max: 5s
//
// References of the form ${NAME} or ${NAME:default} in the endpoint and
// credentials are rendered from the environment.
package cloudcall
