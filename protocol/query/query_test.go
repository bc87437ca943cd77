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

package query

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/schema"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/handler"
)

type tag struct {
	Key, Value *string
}

func (*tag) SchemaFields() []schema.Field {
	return []schema.Field{
		schema.Scalar("Key", schema.KindString, func(t *tag) *string { return t.Key }),
		schema.Scalar("Value", schema.KindString, func(t *tag) *string { return t.Value }),
	}
}

type createWidget struct {
	Name       *string
	Count      *int64
	Ratio      *float64
	Enabled    *bool
	Created    *time.Time
	Blob       []byte
	IDs        []string
	Tags       []*tag
	Attributes map[string]string
	Parent     *tag
	Zone       *string
}

var (
	_attrKey   = schema.Member("Name", schema.KindString)
	_attrValue = schema.Member("Value", schema.KindString)
)

func (*createWidget) SchemaFields() []schema.Field {
	zone := schema.Scalar("zone", schema.KindString, func(w *createWidget) *string { return w.Zone })
	zone.Default = func() interface{} { return "a" }
	return []schema.Field{
		schema.Scalar("Name", schema.KindString, func(w *createWidget) *string { return w.Name }),
		schema.Scalar("Count", schema.KindLong, func(w *createWidget) *int64 { return w.Count }),
		schema.Scalar("Ratio", schema.KindDouble, func(w *createWidget) *float64 { return w.Ratio }),
		schema.Scalar("Enabled", schema.KindBoolean, func(w *createWidget) *bool { return w.Enabled }),
		schema.Scalar("Created", schema.KindTimestamp, func(w *createWidget) *time.Time { return w.Created }),
		schema.Scalar("Blob", schema.KindBinary, func(w *createWidget) []byte { return w.Blob }),
		schema.List("IDs", schema.Member("", schema.KindString), func(w *createWidget) []string { return w.IDs }),
		schema.List("Tags", schema.Member("Tag", schema.KindStruct), func(w *createWidget) []*tag { return w.Tags }),
		{
			LocationName: "Attributes",
			Kind:         schema.KindMap,
			Get:          schema.Getter(func(w *createWidget) map[string]string { return w.Attributes }),
			Key:          &_attrKey,
			Value:        &_attrValue,
		},
		schema.Struct("Parent", func(w *createWidget) *tag { return w.Parent }),
		zone,
	}
}

func str(s string) *string { return &s }

func fullWidget() *createWidget {
	count := int64(3)
	ratio := 0.5
	enabled := true
	created := time.Date(2016, 12, 21, 18, 7, 35, 0, time.UTC)
	return &createWidget{
		Name:       str("widget one"),
		Count:      &count,
		Ratio:      &ratio,
		Enabled:    &enabled,
		Created:    &created,
		Blob:       []byte("hi"),
		IDs:        []string{"a", "b"},
		Tags:       []*tag{{Key: str("env"), Value: str("prod")}},
		Attributes: map[string]string{"b": "2", "a": "1"},
		Parent:     &tag{Key: str("k")},
	}
}

var _createWidget = OperationInfo{Name: "CreateWidget", APIVersion: "2020-01-01"}

func pairs(q transport.QueryParams) []string {
	var out []string
	for _, k := range q.Keys() {
		for _, v := range q.Values(k) {
			out = append(out, k+"="+v)
		}
	}
	return out
}

func TestMarshalQueryParams(t *testing.T) {
	tests := []struct {
		desc    string
		dialect Dialect
		give    *createWidget
		want    []string
	}{
		{
			desc:    "aws-query every kind",
			dialect: AWSQuery,
			give:    fullWidget(),
			want: []string{
				"Action=CreateWidget",
				"Version=2020-01-01",
				"Name=widget one",
				"Count=3",
				"Ratio=0.5",
				"Enabled=true",
				"Created=2016-12-21T18:07:35.000Z",
				"Blob=aGk=",
				"IDs.member.1=a",
				"IDs.member.2=b",
				"Tags.Tag.1.Key=env",
				"Tags.Tag.1.Value=prod",
				"Attributes.entry.1.Name=a",
				"Attributes.entry.1.Value=1",
				"Attributes.entry.2.Name=b",
				"Attributes.entry.2.Value=2",
				"Parent.Key=k",
				"zone=a",
			},
		},
		{
			desc:    "ec2 every kind",
			dialect: EC2,
			give:    fullWidget(),
			want: []string{
				"Action=CreateWidget",
				"Version=2020-01-01",
				"Name=widget one",
				"Count=3",
				"Ratio=0.5",
				"Enabled=true",
				"Created=2016-12-21T18:07:35.000Z",
				"Blob=aGk=",
				"IDs.1=a",
				"IDs.2=b",
				"Tags.1.Key=env",
				"Tags.1.Value=prod",
				"Attributes.entry.1.Name=a",
				"Attributes.entry.1.Value=1",
				"Attributes.entry.2.Name=b",
				"Attributes.entry.2.Value=2",
				"Parent.Key=k",
				"Zone=a",
			},
		},
		{
			desc:    "nil fields are elided",
			dialect: AWSQuery,
			give:    &createWidget{},
			want:    []string{"Action=CreateWidget", "Version=2020-01-01", "zone=a"},
		},
		{
			desc:    "aws-query sends empty lists",
			dialect: AWSQuery,
			give:    &createWidget{IDs: []string{}},
			want:    []string{"Action=CreateWidget", "Version=2020-01-01", "IDs=", "zone=a"},
		},
		{
			desc:    "ec2 omits empty lists",
			dialect: EC2,
			give:    &createWidget{IDs: []string{}},
			want:    []string{"Action=CreateWidget", "Version=2020-01-01", "Zone=a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			f := MustFactory("https://widgets.us-east-1.amazonaws.com", WithDialect(tt.dialect))
			req, err := f.Marshaller(_createWidget).MarshalQueryParams(tt.give)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pairs(req.Query()))
			assert.Equal(t, http.MethodPost, req.Method())
			assert.Equal(t, "", req.EncodedPath())
			assert.Nil(t, req.Content())
		})
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	m := MustFactory("https://widgets.us-east-1.amazonaws.com").Marshaller(_createWidget)
	first, err := m.Marshal(fullWidget())
	require.NoError(t, err)
	firstBody, err := first.ReadContent()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		req, err := m.Marshal(fullWidget())
		require.NoError(t, err)
		body, err := req.ReadContent()
		require.NoError(t, err)
		assert.Equal(t, string(firstBody), string(body))
	}
}

func TestMarshalFlattened(t *testing.T) {
	type flat struct{ Values []string }
	obj := flatObject{
		obj: &flat{Values: []string{"x", "y"}},
		fields: func() []schema.Field {
			f := schema.List("Value", schema.Member("", schema.KindString), func(o *flat) []string { return o.Values })
			f.Flattened = true
			return []schema.Field{f}
		},
	}
	req, err := MustFactory("https://x.amazonaws.com").Marshaller(_createWidget).MarshalQueryParams(obj)
	require.NoError(t, err)
	assert.Equal(t, []string{"Action=CreateWidget", "Version=2020-01-01", "Value.1=x", "Value.2=y"}, pairs(req.Query()))
}

type objectFunc func() []schema.Field

// flatObject marshals obj using fields. Getters receive obj.
type flatObject struct {
	obj    interface{}
	fields objectFunc
}

func (f flatObject) SchemaFields() []schema.Field {
	fields := f.fields()
	for i := range fields {
		get := fields[i].Get
		fields[i].Get = func(interface{}) interface{} { return get(f.obj) }
	}
	return fields
}

func TestMarshalShapeErrors(t *testing.T) {
	type bad struct{}
	tests := []struct {
		desc  string
		field schema.Field
	}{
		{desc: "string", field: schema.Field{LocationName: "S", Kind: schema.KindString, Get: func(interface{}) interface{} { return 1 }}},
		{desc: "integer", field: schema.Field{LocationName: "I", Kind: schema.KindInteger, Get: func(interface{}) interface{} { return "1" }}},
		{desc: "boolean", field: schema.Field{LocationName: "B", Kind: schema.KindBoolean, Get: func(interface{}) interface{} { return 1 }}},
		{desc: "timestamp", field: schema.Field{LocationName: "T", Kind: schema.KindTimestamp, Get: func(interface{}) interface{} { return "now" }}},
		{desc: "list", field: schema.Field{LocationName: "L", Kind: schema.KindList, Get: func(interface{}) interface{} { return "x" }}},
		{desc: "struct", field: schema.Field{LocationName: "O", Kind: schema.KindStruct, Get: func(interface{}) interface{} { return bad{} }}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			obj := flatObject{fields: func() []schema.Field { return []schema.Field{tt.field} }}
			_, err := MustFactory("https://x.amazonaws.com").Marshaller(_createWidget).Marshal(obj)
			require.Error(t, err)
			assert.Equal(t, cloudcallerrors.CodeInvalidArgument, cloudcallerrors.ErrorCode(err))
		})
	}
}

func TestMarshalNil(t *testing.T) {
	var w *createWidget
	_, err := MustFactory("https://x.amazonaws.com").Marshaller(_createWidget).Marshal(w)
	require.Error(t, err)
	assert.Equal(t, cloudcallerrors.CodeInvalidArgument, cloudcallerrors.ErrorCode(err))
}

func TestMarshalRelocatesParams(t *testing.T) {
	req, err := MustFactory("https://widgets.us-east-1.amazonaws.com").
		Marshaller(_createWidget).
		Marshal(&createWidget{Name: str("a b&c")})
	require.NoError(t, err)

	assert.Equal(t, 0, req.Query().Len())
	body, err := req.ReadContent()
	require.NoError(t, err)
	assert.Equal(t, "Action=CreateWidget&Version=2020-01-01&Name=a+b%26c&zone=a", string(body))
	ct, _ := req.Header("Content-Type")
	assert.Equal(t, FormContentType, ct)
	cl, _ := req.Header("Content-Length")
	assert.Equal(t, "58", cl)
}

func TestMarshalGetKeepsQuery(t *testing.T) {
	op := _createWidget
	op.Method = http.MethodGet
	req, err := MustFactory("https://widgets.us-east-1.amazonaws.com").Marshaller(op).Marshal(&createWidget{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Action=CreateWidget", "Version=2020-01-01", "zone=a"}, pairs(req.Query()))
	assert.Nil(t, req.Content())
}

func TestMoveParamsToBodyIsIdempotent(t *testing.T) {
	req, err := MustFactory("https://widgets.us-east-1.amazonaws.com").
		Marshaller(_createWidget).
		MarshalQueryParams(fullWidget())
	require.NoError(t, err)

	once := MoveParamsToBody(req)
	twice := MoveParamsToBody(once)

	onceBody, err := once.ReadContent()
	require.NoError(t, err)
	twiceBody, err := twice.ReadContent()
	require.NoError(t, err)
	assert.Equal(t, string(onceBody), string(twiceBody))
	assert.Equal(t, once.Headers().Items(), twice.Headers().Items())
	assert.Equal(t, once.Query().Len(), twice.Query().Len())
	assert.Equal(t, 0, twice.Query().Len())

	assert.Equal(t, 18, req.Query().Len(), "the input request is not modified")
	assert.Nil(t, MoveParamsToBody(nil))
}

func TestMoveParamsToBodySkipsValuelessParams(t *testing.T) {
	req := transport.NewRequestBuilder().
		Method(http.MethodPost).
		PutQuery("Flag").
		Build()

	assert.Equal(t, 0, req.Query().Len())
	moved := MoveParamsToBody(req)
	assert.Same(t, req, moved)
	assert.Nil(t, moved.Content())
	_, ok := moved.Header("Content-Type")
	assert.False(t, ok)
}

func TestParamsToBodyInterceptor(t *testing.T) {
	req, err := MustFactory("https://widgets.us-east-1.amazonaws.com").
		Marshaller(_createWidget).
		MarshalQueryParams(&createWidget{})
	require.NoError(t, err)

	tests := []struct {
		desc      string
		protocol  string
		wantMoved bool
	}{
		{desc: "no protocol", wantMoved: true},
		{desc: "query", protocol: handler.ProtocolQuery, wantMoved: true},
		{desc: "ec2", protocol: handler.ProtocolEC2, wantMoved: true},
		{desc: "rest-xml", protocol: handler.ProtocolRESTXML},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			attrs := attribute.NewBag()
			if tt.protocol != "" {
				handler.Protocol.Put(attrs, tt.protocol)
			}
			got, err := ParamsToBodyInterceptor{}.ModifyHTTPRequest(
				context.Background(), interceptor.Context{HTTPRequest: req}, attrs)
			require.NoError(t, err)
			if tt.wantMoved {
				assert.Equal(t, 0, got.Query().Len())
				assert.NotNil(t, got.Content())
			} else {
				assert.Same(t, req, got)
			}
		})
	}
}

func TestNewRegistry(t *testing.T) {
	_, err := NewRegistry(AWSQuery, map[schema.Kind]MarshalFunc{schema.KindString: marshalString})
	require.Error(t, err)
	assert.Equal(t, cloudcallerrors.CodeInternal, cloudcallerrors.ErrorCode(err))
	assert.Contains(t, err.Error(), "no marshaller registered for kind list")
	assert.Contains(t, err.Error(), "no marshaller registered for kind struct")

	assert.Panics(t, func() { MustRegistry(EC2, nil) })
}

func TestRegistryWith(t *testing.T) {
	upper := func(mc *MarshalContext, path string, val interface{}, f *schema.Field) error {
		mc.PutParam(path, "custom")
		return nil
	}
	custom, err := RegistryFor(AWSQuery).With(schema.KindString, upper)
	require.NoError(t, err)

	req, err := MustFactory("https://x.amazonaws.com", WithRegistry(custom)).
		Marshaller(_createWidget).
		MarshalQueryParams(&createWidget{Name: str("ignored")})
	require.NoError(t, err)
	name, _ := req.Query().Get("Name")
	assert.Equal(t, "custom", name)

	req, err = MustFactory("https://x.amazonaws.com").
		Marshaller(_createWidget).
		MarshalQueryParams(&createWidget{Name: str("kept")})
	require.NoError(t, err)
	name, _ = req.Query().Get("Name")
	assert.Equal(t, "kept", name, "the shared registry is unchanged")
}

func TestNewFactory(t *testing.T) {
	tests := []struct {
		desc    string
		give    string
		wantErr bool
	}{
		{desc: "valid", give: "https://rds.us-east-1.amazonaws.com"},
		{desc: "no scheme", give: "rds.us-east-1.amazonaws.com", wantErr: true},
		{desc: "bad url", give: "https://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			f, err := NewFactory(tt.give, WithDialect(EC2))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, cloudcallerrors.CodeClient, cloudcallerrors.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, EC2, f.Dialect())
			assert.Equal(t, "rds.us-east-1.amazonaws.com", f.Endpoint().Host)
		})
	}
}

type snapshot struct {
	Identifier string
	RequestID  string
}

func decodeSnapshot(result *etree.Element, meta ResponseMetadata) (snapshot, error) {
	s := snapshot{RequestID: meta.RequestID}
	if result != nil {
		if el := result.FindElement("DBSnapshot/DBSnapshotIdentifier"); el != nil {
			s.Identifier = el.Text()
		}
	}
	return s, nil
}

func TestResultHandler(t *testing.T) {
	h := ResultHandler("CopyDBSnapshot", decodeSnapshot)
	res := &transport.Response{StatusCode: 200}

	got, err := h.HandleResponse(res, []byte(`<CopyDBSnapshotResponse xmlns="http://rds.amazonaws.com/doc/2014-10-31/">
  <CopyDBSnapshotResult>
    <DBSnapshot><DBSnapshotIdentifier>copy-2</DBSnapshotIdentifier></DBSnapshot>
  </CopyDBSnapshotResult>
  <ResponseMetadata><RequestId>req-1</RequestId></ResponseMetadata>
</CopyDBSnapshotResponse>`))
	require.NoError(t, err)
	assert.Equal(t, snapshot{Identifier: "copy-2", RequestID: "req-1"}, got)

	_, err = h.HandleResponse(res, []byte(`<DeleteDBSnapshotResponse/>`))
	require.Error(t, err)
	assert.Equal(t, cloudcallerrors.CodeService, cloudcallerrors.ErrorCode(err))

	_, err = h.HandleResponse(res, nil)
	require.Error(t, err)
}

func TestErrorHandler(t *testing.T) {
	err := ErrorHandler().HandleError(&transport.Response{StatusCode: 400}, []byte(`<ErrorResponse>
  <Error><Type>Sender</Type><Code>InvalidParameterValue</Code><Message>bad region</Message></Error>
  <RequestId>req-2</RequestId>
</ErrorResponse>`))
	var se *cloudcallerrors.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "InvalidParameterValue", se.ErrorCode)
	assert.Equal(t, "bad region", se.Message)
	assert.Equal(t, "req-2", se.RequestID)
}
