package models

import (
	"fmt"
	"strings"
)

// StorageKind is the discriminator of a StorageType.
type StorageKind string

const (
	KindUnknown  StorageKind = "unknown"
	KindLocal    StorageKind = "local"
	KindExternal StorageKind = "external"
	KindRemote   StorageKind = "remote"
	KindCloud    StorageKind = "cloud"
)

type ExternalSubtype string

const (
	ExternalUSB ExternalSubtype = "usb"
	ExternalSSD ExternalSubtype = "ssd"
	ExternalHDD ExternalSubtype = "hdd"
)

type RemoteSubtype string

const (
	RemoteSFTP   RemoteSubtype = "sftp"
	RemoteWebDAV RemoteSubtype = "webdav"
)

type CloudSubtype string

const (
	CloudS3        CloudSubtype = "s3"
	CloudAzureBlob CloudSubtype = "azureblob"
	CloudGCS       CloudSubtype = "google-cloud-storage"
	CloudOneDrive  CloudSubtype = "microsoft-onedrive"
	CloudDropbox   CloudSubtype = "dropbox"
)

var subtypes = map[StorageKind][]string{
	KindExternal: {string(ExternalUSB), string(ExternalSSD), string(ExternalHDD)},
	KindRemote:   {string(RemoteSFTP), string(RemoteWebDAV)},
	KindCloud: {
		string(CloudS3), string(CloudAzureBlob), string(CloudGCS),
		string(CloudOneDrive), string(CloudDropbox),
	},
}

// StorageType describes the medium of a disk. Local and unknown carry no
// subtype; external, remote and cloud carry exactly one. Values are built
// through the constructors below so an invalid pairing cannot be expressed
// outside of this package.
//
// It is persisted as two columns, type_kind and type_subtype.
type StorageType struct {
	Kind    StorageKind `gorm:"column:kind;type:text;not null"`
	Subtype string      `gorm:"column:subtype;type:text"`
}

func Unknown() StorageType {
	return StorageType{Kind: KindUnknown}
}

func Local() StorageType {
	return StorageType{Kind: KindLocal}
}

func External(subtype ExternalSubtype) StorageType {
	return StorageType{Kind: KindExternal, Subtype: string(subtype)}
}

func Remote(subtype RemoteSubtype) StorageType {
	return StorageType{Kind: KindRemote, Subtype: string(subtype)}
}

func Cloud(subtype CloudSubtype) StorageType {
	return StorageType{Kind: KindCloud, Subtype: string(subtype)}
}

// Valid reports whether the kind is known and the subtype matches it.
func (st StorageType) Valid() bool {
	switch st.Kind {
	case KindUnknown, KindLocal:
		return st.Subtype == ""
	case KindExternal, KindRemote, KindCloud:
		for _, subtype := range subtypes[st.Kind] {
			if subtype == st.Subtype {
				return true
			}
		}
	}
	return false
}

// String renders the type as "local" or "external(usb)".
func (st StorageType) String() string {
	if st.Subtype == "" {
		return string(st.Kind)
	}
	return fmt.Sprintf("%s(%s)", st.Kind, st.Subtype)
}

func (st StorageType) MarshalText() ([]byte, error) {
	if !st.Valid() {
		return nil, fmt.Errorf("invalid storage type '%s'", st.String())
	}
	return []byte(st.String()), nil
}

func (st *StorageType) UnmarshalText(text []byte) error {
	parsed, err := ParseStorageType(string(text))
	if err != nil {
		return err
	}
	*st = parsed
	return nil
}

// ParseStorageType is the inverse of String.
func ParseStorageType(value string) (StorageType, error) {
	value = strings.ToLower(strings.TrimSpace(value))

	kind, subtype := value, ""
	if open := strings.IndexByte(value, '('); open >= 0 {
		if !strings.HasSuffix(value, ")") {
			return StorageType{}, fmt.Errorf("malformed storage type '%s'", value)
		}
		kind, subtype = value[:open], value[open+1:len(value)-1]
	}

	st := StorageType{Kind: StorageKind(kind), Subtype: subtype}
	if !st.Valid() {
		return StorageType{}, fmt.Errorf("unknown storage type '%s'", value)
	}
	return st, nil
}
