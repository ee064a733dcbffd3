package models

import (
	"encoding/json"
	"fmt"
)

type CredentialKind string

const (
	CredentialS3   CredentialKind = "s3"
	CredentialSFTP CredentialKind = "sftp"
)

// S3Config is inert configuration; nothing in tierd connects to S3.
type S3Config struct {
	AccessKeyID     string  `json:"accessKeyId"`
	SecretAccessKey string  `json:"secretAccessKey"`
	Region          *string `json:"region,omitempty"`
	Bucket          string  `json:"bucket"`
	Endpoint        *string `json:"endpoint,omitempty"`
}

type SFTPConfig struct {
	Host       string  `json:"host"`
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	PrivateKey *string `json:"privateKey,omitempty"`
	Port       *int    `json:"port,omitempty"`
	RootPath   *string `json:"rootPath,omitempty"`
}

// Credentials holds exactly one of S3 or SFTP, selected by Kind.
// The JSON form is {"type": "<kind>", "config": {...}}.
type Credentials struct {
	Kind CredentialKind
	S3   *S3Config
	SFTP *SFTPConfig
}

func S3Credentials(cfg S3Config) *Credentials {
	return &Credentials{Kind: CredentialS3, S3: &cfg}
}

func SFTPCredentials(cfg SFTPConfig) *Credentials {
	return &Credentials{Kind: CredentialSFTP, SFTP: &cfg}
}

type credentialsEnvelope struct {
	Type   CredentialKind  `json:"type"`
	Config json.RawMessage `json:"config"`
}

func (c Credentials) MarshalJSON() ([]byte, error) {
	var payload any
	switch c.Kind {
	case CredentialS3:
		if c.S3 == nil {
			return nil, fmt.Errorf("s3 credentials without config")
		}
		payload = c.S3
	case CredentialSFTP:
		if c.SFTP == nil {
			return nil, fmt.Errorf("sftp credentials without config")
		}
		payload = c.SFTP
	default:
		return nil, fmt.Errorf("unknown credential type '%s'", c.Kind)
	}

	config, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(credentialsEnvelope{Type: c.Kind, Config: config})
}

func (c *Credentials) UnmarshalJSON(data []byte) error {
	var envelope credentialsEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if len(envelope.Config) == 0 {
		return fmt.Errorf("credentials of type '%s' without config", envelope.Type)
	}

	switch envelope.Type {
	case CredentialS3:
		var cfg S3Config
		if err := json.Unmarshal(envelope.Config, &cfg); err != nil {
			return fmt.Errorf("failed to decode s3 config: %w", err)
		}
		*c = Credentials{Kind: CredentialS3, S3: &cfg}
	case CredentialSFTP:
		var cfg SFTPConfig
		if err := json.Unmarshal(envelope.Config, &cfg); err != nil {
			return fmt.Errorf("failed to decode sftp config: %w", err)
		}
		*c = Credentials{Kind: CredentialSFTP, SFTP: &cfg}
	default:
		return fmt.Errorf("unknown credential type '%s'", envelope.Type)
	}
	return nil
}
