// Package bank provides the wire types and gRPC bindings for the bank and file services.
//
// Messages are encoded in proto3 wire format (see bank.proto) by hand with protowire,
// so any protoc-generated client for bank.proto interoperates with this server.
package bank

import (
	"fmt"
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"
)

// Status is the terminal state of an upload.
type Status int32

const (
	Status_PENDING     Status = 0
	Status_IN_PROGRESS Status = 1
	Status_SUCCESS     Status = 2
	Status_FAILED      Status = 3
)

var statusNames = map[Status]string{
	Status_PENDING:     "PENDING",
	Status_IN_PROGRESS: "IN_PROGRESS",
	Status_SUCCESS:     "SUCCESS",
	Status_FAILED:      "FAILED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}

// Request/Response message types

type BalanceCheckRequest struct {
	AccountNumber int32 `json:"account_number"`
}

func (m *BalanceCheckRequest) GetAccountNumber() int32 {
	if m != nil {
		return m.AccountNumber
	}
	return 0
}

func (m *BalanceCheckRequest) appendWire(b []byte) []byte {
	return appendInt32(b, 1, m.GetAccountNumber())
}

func (m *BalanceCheckRequest) unmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num == 1 && typ == protowire.VarintType {
			return consumeInt32(b, &m.AccountNumber), true
		}
		return 0, false
	})
}

type Balance struct {
	Amount int32 `json:"amount"`
}

func (m *Balance) GetAmount() int32 {
	if m != nil {
		return m.Amount
	}
	return 0
}

func (m *Balance) appendWire(b []byte) []byte {
	return appendInt32(b, 1, m.GetAmount())
}

func (m *Balance) unmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num == 1 && typ == protowire.VarintType {
			return consumeInt32(b, &m.Amount), true
		}
		return 0, false
	})
}

type WithdrawRequest struct {
	AccountNumber int32 `json:"account_number"`
	Amount        int32 `json:"amount"`
}

func (m *WithdrawRequest) GetAccountNumber() int32 {
	if m != nil {
		return m.AccountNumber
	}
	return 0
}

func (m *WithdrawRequest) GetAmount() int32 {
	if m != nil {
		return m.Amount
	}
	return 0
}

func (m *WithdrawRequest) appendWire(b []byte) []byte {
	b = appendInt32(b, 1, m.GetAccountNumber())
	return appendInt32(b, 2, m.GetAmount())
}

func (m *WithdrawRequest) unmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if typ != protowire.VarintType {
			return 0, false
		}
		switch num {
		case 1:
			return consumeInt32(b, &m.AccountNumber), true
		case 2:
			return consumeInt32(b, &m.Amount), true
		}
		return 0, false
	})
}

type Money struct {
	Value int32 `json:"value"`
}

func (m *Money) GetValue() int32 {
	if m != nil {
		return m.Value
	}
	return 0
}

func (m *Money) appendWire(b []byte) []byte {
	return appendInt32(b, 1, m.GetValue())
}

func (m *Money) unmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num == 1 && typ == protowire.VarintType {
			return consumeInt32(b, &m.Value), true
		}
		return 0, false
	})
}

type DepositRequest struct {
	AccountNumber int32 `json:"account_number"`
	Amount        int32 `json:"amount"`
}

func (m *DepositRequest) GetAccountNumber() int32 {
	if m != nil {
		return m.AccountNumber
	}
	return 0
}

func (m *DepositRequest) GetAmount() int32 {
	if m != nil {
		return m.Amount
	}
	return 0
}

func (m *DepositRequest) appendWire(b []byte) []byte {
	b = appendInt32(b, 1, m.GetAccountNumber())
	return appendInt32(b, 2, m.GetAmount())
}

func (m *DepositRequest) unmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if typ != protowire.VarintType {
			return 0, false
		}
		switch num {
		case 1:
			return consumeInt32(b, &m.AccountNumber), true
		case 2:
			return consumeInt32(b, &m.Amount), true
		}
		return 0, false
	})
}

type MetaData struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (m *MetaData) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

func (m *MetaData) GetType() string {
	if m != nil {
		return m.Type
	}
	return ""
}

func (m *MetaData) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.GetName())
	return appendString(b, 2, m.GetType())
}

func (m *MetaData) unmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if typ != protowire.BytesType {
			return 0, false
		}
		switch num {
		case 1:
			return consumeString(b, &m.Name), true
		case 2:
			return consumeString(b, &m.Type), true
		}
		return 0, false
	})
}

type File struct {
	Content []byte `json:"content"`
}

func (m *File) GetContent() []byte {
	if m != nil {
		return m.Content
	}
	return nil
}

func (m *File) appendWire(b []byte) []byte {
	if len(m.GetContent()) == 0 {
		return b
	}
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	return protowire.AppendBytes(b, m.Content)
}

func (m *File) unmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num != 1 || typ != protowire.BytesType {
			return 0, false
		}
		v, n := protowire.ConsumeBytes(b)
		if n >= 0 {
			m.Content = append([]byte(nil), v...)
		}
		return n, true
	})
}

// FileUploadRequest carries either the file metadata or one chunk of file content.
type FileUploadRequest struct {
	// Types that are valid to be assigned to Request:
	//
	//	*FileUploadRequest_Metadata
	//	*FileUploadRequest_File
	Request isFileUploadRequest_Request `json:"request"`
}

type isFileUploadRequest_Request interface {
	isFileUploadRequest_Request()
}

type FileUploadRequest_Metadata struct {
	Metadata *MetaData
}

type FileUploadRequest_File struct {
	File *File
}

func (*FileUploadRequest_Metadata) isFileUploadRequest_Request() {}

func (*FileUploadRequest_File) isFileUploadRequest_Request() {}

func (m *FileUploadRequest) GetRequest() isFileUploadRequest_Request {
	if m != nil {
		return m.Request
	}
	return nil
}

func (m *FileUploadRequest) GetMetadata() *MetaData {
	if x, ok := m.GetRequest().(*FileUploadRequest_Metadata); ok {
		return x.Metadata
	}
	return nil
}

func (m *FileUploadRequest) GetFile() *File {
	if x, ok := m.GetRequest().(*FileUploadRequest_File); ok {
		return x.File
	}
	return nil
}

func (m *FileUploadRequest) appendWire(b []byte) []byte {
	switch x := m.GetRequest().(type) {
	case *FileUploadRequest_Metadata:
		if x.Metadata != nil {
			b = appendMessage(b, 1, x.Metadata)
		}
	case *FileUploadRequest_File:
		if x.File != nil {
			b = appendMessage(b, 2, x.File)
		}
	}
	return b
}

func (m *FileUploadRequest) unmarshalWire(b []byte) error {
	var nested error
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if typ != protowire.BytesType {
			return 0, false
		}
		switch num {
		case 1:
			md := new(MetaData)
			n := consumeMessage(b, md, &nested)
			m.Request = &FileUploadRequest_Metadata{Metadata: md}
			return n, true
		case 2:
			f := new(File)
			n := consumeMessage(b, f, &nested)
			m.Request = &FileUploadRequest_File{File: f}
			return n, true
		}
		return 0, false
	})
	if err != nil {
		return err
	}
	return nested
}

type FileUploadResponse struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
}

func (m *FileUploadResponse) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

func (m *FileUploadResponse) GetStatus() Status {
	if m != nil {
		return m.Status
	}
	return Status_PENDING
}

func (m *FileUploadResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.GetName())
	return appendInt32(b, 2, int32(m.GetStatus()))
}

func (m *FileUploadResponse) unmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &m.Name), true
		case num == 2 && typ == protowire.VarintType:
			var v int32
			n := consumeInt32(b, &v)
			m.Status = Status(v)
			return n, true
		}
		return 0, false
	})
}

// wireMessage is implemented by every message in this package.
type wireMessage interface {
	appendWire(b []byte) []byte
	unmarshalWire(b []byte) error
}

// consumeFields walks the fields of an encoded message. fn consumes the value of a known
// field and returns the number of bytes used; unknown fields are skipped.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, bool)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, known := fn(num, typ, b)
		if !known {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendMessage(b []byte, num protowire.Number, m wireMessage) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.appendWire(nil))
}

func consumeInt32(b []byte, dst *int32) int {
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = int32(v)
	}
	return n
}

func consumeString(b []byte, dst *string) int {
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = v
	}
	return n
}

func consumeMessage(b []byte, m wireMessage, errp *error) int {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	if err := m.unmarshalWire(v); err != nil && *errp == nil {
		*errp = err
	}
	return n
}
