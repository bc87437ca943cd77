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

package rds

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/protocol/awsxml"
	"go.uber.org/cloudcall/protocol/query"
)

func decodeCopyDBSnapshot(result *etree.Element, meta query.ResponseMetadata) (*CopyDBSnapshotOutput, error) {
	out := &CopyDBSnapshotOutput{RequestID: meta.RequestID}
	if el := child(result, "DBSnapshot"); el != nil {
		var d decoder
		out.DBSnapshot = &DBSnapshot{
			DBSnapshotIdentifier:       d.text(el, "DBSnapshotIdentifier"),
			DBInstanceIdentifier:       d.text(el, "DBInstanceIdentifier"),
			DBSnapshotArn:              d.text(el, "DBSnapshotArn"),
			Status:                     d.text(el, "Status"),
			Engine:                     d.text(el, "Engine"),
			SourceRegion:               d.text(el, "SourceRegion"),
			SourceDBSnapshotIdentifier: d.text(el, "SourceDBSnapshotIdentifier"),
			KmsKeyId:                   d.text(el, "KmsKeyId"),
			Encrypted:                  d.bool(el, "Encrypted"),
			AllocatedStorage:           d.int(el, "AllocatedStorage"),
			SnapshotCreateTime:         d.time(el, "SnapshotCreateTime"),
		}
		if d.err != nil {
			return nil, d.err
		}
	}
	return out, nil
}

func decodeCreateDBCluster(result *etree.Element, meta query.ResponseMetadata) (*CreateDBClusterOutput, error) {
	out := &CreateDBClusterOutput{RequestID: meta.RequestID}
	if el := child(result, "DBCluster"); el != nil {
		var d decoder
		cluster := &DBCluster{
			DBClusterIdentifier:         d.text(el, "DBClusterIdentifier"),
			DBClusterArn:                d.text(el, "DBClusterArn"),
			Status:                      d.text(el, "Status"),
			Engine:                      d.text(el, "Engine"),
			EngineVersion:               d.text(el, "EngineVersion"),
			Endpoint:                    d.text(el, "Endpoint"),
			Port:                        d.int(el, "Port"),
			ReplicationSourceIdentifier: d.text(el, "ReplicationSourceIdentifier"),
			StorageEncrypted:            d.bool(el, "StorageEncrypted"),
		}
		if zones := el.SelectElement("AvailabilityZones"); zones != nil {
			for _, z := range zones.SelectElements("AvailabilityZone") {
				cluster.AvailabilityZones = append(cluster.AvailabilityZones, z.Text())
			}
		}
		if d.err != nil {
			return nil, d.err
		}
		out.DBCluster = cluster
	}
	return out, nil
}

func child(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	return el.SelectElement(tag)
}

// decoder reads typed values below an element and keeps the first error.
type decoder struct {
	err error
}

func (d *decoder) text(el *etree.Element, path string) string {
	s, _ := awsxml.ChildText(el, path)
	return s
}

func (d *decoder) bool(el *etree.Element, path string) bool {
	s, ok := awsxml.ChildText(el, path)
	if !ok || d.err != nil {
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		d.err = invalid(path, s, err)
	}
	return b
}

func (d *decoder) int(el *etree.Element, path string) int64 {
	s, ok := awsxml.ChildText(el, path)
	if !ok || d.err != nil {
		return 0
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		d.err = invalid(path, s, err)
	}
	return i
}

func (d *decoder) time(el *etree.Element, path string) time.Time {
	s, ok := awsxml.ChildText(el, path)
	if !ok || d.err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		d.err = invalid(path, s, err)
	}
	return t
}

func invalid(path, value string, err error) error {
	return cloudcallerrors.Wrap(cloudcallerrors.CodeService, err, "invalid %s %q in response", path, value)
}
