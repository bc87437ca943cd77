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
	"time"

	"go.uber.org/cloudcall/api/schema"
	"go.uber.org/cloudcall/protocol/query"
)

// APIVersion is the RDS query API version.
const APIVersion = "2014-10-31"

var (
	_copyDBSnapshot  = query.OperationInfo{Name: "CopyDBSnapshot", APIVersion: APIVersion}
	_createDBCluster = query.OperationInfo{Name: "CreateDBCluster", APIVersion: APIVersion}
)

// Tag is a key/value pair attached to a resource.
type Tag struct {
	Key   *string
	Value *string
}

// SchemaFields implements schema.Object.
func (*Tag) SchemaFields() []schema.Field {
	return []schema.Field{
		schema.Scalar("Key", schema.KindString, func(t *Tag) *string { return t.Key }),
		schema.Scalar("Value", schema.KindString, func(t *Tag) *string { return t.Value }),
	}
}

// CopyDBSnapshotInput copies a snapshot, possibly from another region.
//
// When SourceRegion is set and PreSignedUrl is not, the client presigns a
// CopyDBSnapshot request in the source region and sends it as
// PreSignedUrl. SourceRegion itself is never sent.
type CopyDBSnapshotInput struct {
	SourceDBSnapshotIdentifier *string
	TargetDBSnapshotIdentifier *string
	KmsKeyId                   *string
	Tags                       []*Tag
	CopyTags                   *bool
	PreSignedUrl               *string
	OptionGroupName            *string
	SourceRegion               *string
}

// SchemaFields implements schema.Object.
func (*CopyDBSnapshotInput) SchemaFields() []schema.Field {
	return []schema.Field{
		schema.Scalar("SourceDBSnapshotIdentifier", schema.KindString, func(in *CopyDBSnapshotInput) *string { return in.SourceDBSnapshotIdentifier }),
		schema.Scalar("TargetDBSnapshotIdentifier", schema.KindString, func(in *CopyDBSnapshotInput) *string { return in.TargetDBSnapshotIdentifier }),
		schema.Scalar("KmsKeyId", schema.KindString, func(in *CopyDBSnapshotInput) *string { return in.KmsKeyId }),
		schema.List("Tags", schema.Member("Tag", schema.KindStruct), func(in *CopyDBSnapshotInput) []*Tag { return in.Tags }),
		schema.Scalar("CopyTags", schema.KindBoolean, func(in *CopyDBSnapshotInput) *bool { return in.CopyTags }),
		schema.Scalar("PreSignedUrl", schema.KindString, func(in *CopyDBSnapshotInput) *string { return in.PreSignedUrl }),
		schema.Scalar("OptionGroupName", schema.KindString, func(in *CopyDBSnapshotInput) *string { return in.OptionGroupName }),
		schema.Scalar("SourceRegion", schema.KindString, func(in *CopyDBSnapshotInput) *string { return in.SourceRegion }),
	}
}

// DBSnapshot describes a snapshot.
type DBSnapshot struct {
	DBSnapshotIdentifier       string
	DBInstanceIdentifier       string
	DBSnapshotArn              string
	Status                     string
	Engine                     string
	SourceRegion               string
	SourceDBSnapshotIdentifier string
	KmsKeyId                   string
	Encrypted                  bool
	AllocatedStorage           int64
	SnapshotCreateTime         time.Time
}

// CopyDBSnapshotOutput is the result of CopyDBSnapshot.
type CopyDBSnapshotOutput struct {
	DBSnapshot *DBSnapshot
	RequestID  string
}

// CreateDBClusterInput creates a cluster. A cluster replicating from
// another region is presigned like CopyDBSnapshotInput.
type CreateDBClusterInput struct {
	AvailabilityZones           []string
	BackupRetentionPeriod       *int64
	DBClusterIdentifier         *string
	DBClusterParameterGroupName *string
	DatabaseName                *string
	Engine                      *string
	EngineVersion               *string
	KmsKeyId                    *string
	MasterUserPassword          *string
	MasterUsername              *string
	Port                        *int64
	PreSignedUrl                *string
	ReplicationSourceIdentifier *string
	StorageEncrypted            *bool
	Tags                        []*Tag
	VpcSecurityGroupIds         []string
	SourceRegion                *string
}

// SchemaFields implements schema.Object.
func (*CreateDBClusterInput) SchemaFields() []schema.Field {
	return []schema.Field{
		schema.List("AvailabilityZones", schema.Member("AvailabilityZone", schema.KindString), func(in *CreateDBClusterInput) []string { return in.AvailabilityZones }),
		schema.Scalar("BackupRetentionPeriod", schema.KindInteger, func(in *CreateDBClusterInput) *int64 { return in.BackupRetentionPeriod }),
		schema.Scalar("DBClusterIdentifier", schema.KindString, func(in *CreateDBClusterInput) *string { return in.DBClusterIdentifier }),
		schema.Scalar("DBClusterParameterGroupName", schema.KindString, func(in *CreateDBClusterInput) *string { return in.DBClusterParameterGroupName }),
		schema.Scalar("DatabaseName", schema.KindString, func(in *CreateDBClusterInput) *string { return in.DatabaseName }),
		schema.Scalar("Engine", schema.KindString, func(in *CreateDBClusterInput) *string { return in.Engine }),
		schema.Scalar("EngineVersion", schema.KindString, func(in *CreateDBClusterInput) *string { return in.EngineVersion }),
		schema.Scalar("KmsKeyId", schema.KindString, func(in *CreateDBClusterInput) *string { return in.KmsKeyId }),
		schema.Scalar("MasterUserPassword", schema.KindString, func(in *CreateDBClusterInput) *string { return in.MasterUserPassword }),
		schema.Scalar("MasterUsername", schema.KindString, func(in *CreateDBClusterInput) *string { return in.MasterUsername }),
		schema.Scalar("Port", schema.KindInteger, func(in *CreateDBClusterInput) *int64 { return in.Port }),
		schema.Scalar("PreSignedUrl", schema.KindString, func(in *CreateDBClusterInput) *string { return in.PreSignedUrl }),
		schema.Scalar("ReplicationSourceIdentifier", schema.KindString, func(in *CreateDBClusterInput) *string { return in.ReplicationSourceIdentifier }),
		schema.Scalar("StorageEncrypted", schema.KindBoolean, func(in *CreateDBClusterInput) *bool { return in.StorageEncrypted }),
		schema.List("Tags", schema.Member("Tag", schema.KindStruct), func(in *CreateDBClusterInput) []*Tag { return in.Tags }),
		schema.List("VpcSecurityGroupIds", schema.Member("VpcSecurityGroupId", schema.KindString), func(in *CreateDBClusterInput) []string { return in.VpcSecurityGroupIds }),
		schema.Scalar("SourceRegion", schema.KindString, func(in *CreateDBClusterInput) *string { return in.SourceRegion }),
	}
}

// DBCluster describes a cluster.
type DBCluster struct {
	DBClusterIdentifier         string
	DBClusterArn                string
	Status                      string
	Engine                      string
	EngineVersion               string
	Endpoint                    string
	Port                        int64
	ReplicationSourceIdentifier string
	StorageEncrypted            bool
	AvailabilityZones           []string
}

// CreateDBClusterOutput is the result of CreateDBCluster.
type CreateDBClusterOutput struct {
	DBCluster *DBCluster
	RequestID string
}
