package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/BackendStack21/round5-go/utils"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// OutputFormat represents the byte encoding used in exported files.
type OutputFormat string

const (
	FormatHex    OutputFormat = "hex"
	FormatBase64 OutputFormat = "base64"
)

// maxInputFileSize bounds every file the CLI reads.
const maxInputFileSize = 100 * 1024 * 1024

// KEMKeyPairExport represents an exported KEM key pair.
type KEMKeyPairExport struct {
	Params    string `json:"params"`
	Encoding  string `json:"encoding"`
	PublicKey string `json:"public_key"`
	SecretKey string `json:"secret_key"`
	CreatedAt string `json:"created_at"`
	Checksum  string `json:"checksum,omitempty"` // accidental-corruption check, not authentication
}

// EncapsulationExport represents an exported encapsulation result.
type EncapsulationExport struct {
	Params       string `json:"params"`
	Encoding     string `json:"encoding"`
	Ciphertext   string `json:"ciphertext"`
	SharedSecret string `json:"shared_secret"`
}

// DecapsulationExport holds a recovered shared secret.
type DecapsulationExport struct {
	Params       string `json:"params"`
	Encoding     string `json:"encoding"`
	SharedSecret string `json:"shared_secret"`
}

// EncryptedExport represents an exported hybrid-encrypted message. Encrypted
// holds the serialized message: KEM ciphertext, nonce and AEAD output.
type EncryptedExport struct {
	Params    string `json:"params"`
	Encoding  string `json:"encoding"`
	Encrypted string `json:"encrypted"`
}

// MatrixExport describes an expanded public matrix.
type MatrixExport struct {
	Params   string   `json:"params"`
	Tau      int      `json:"tau"`
	Seed     string   `json:"seed"`
	Elements int      `json:"elements"`
	Digest   string   `json:"digest"`
	Head     []uint16 `json:"head"`
}

func outputFormat(c *cli.Context) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(c.String("format"))); f {
	case FormatHex, FormatBase64:
		return f, nil
	default:
		return "", errors.Errorf("unknown format %q (want hex or base64)", c.String("format"))
	}
}

func encodeBytes(data []byte, format OutputFormat) string {
	switch format {
	case FormatHex:
		return hex.EncodeToString(data)
	default:
		return base64.StdEncoding.EncodeToString(data)
	}
}

// decodeString decodes s in the given encoding. An empty encoding tries hex
// and then base64.
func decodeString(s string, encoding OutputFormat) ([]byte, error) {
	s = strings.TrimSpace(s)
	switch encoding {
	case FormatHex:
		return hex.DecodeString(s)
	case FormatBase64:
		return base64.StdEncoding.DecodeString(s)
	}
	if data, err := hex.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return nil, errors.New("unable to decode string as hex or base64")
}

var fieldAliases = map[string][]string{
	"public_key":    {"public_key", "publicKey", "pk"},
	"secret_key":    {"secret_key", "secretKey", "sk"},
	"ciphertext":    {"ciphertext", "ct"},
	"encrypted":     {"encrypted", "message"},
	"shared_secret": {"shared_secret", "sharedSecret", "ss"},
}

func readInputFile(filename string) ([]byte, error) {
	path, err := homedir.Expand(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "expanding %s", filename)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat file")
	}
	if info.Size() > maxInputFileSize {
		return nil, errors.Errorf("input file too large: %d > %d bytes", info.Size(), maxInputFileSize)
	}
	return os.ReadFile(path)
}

// loadKeyFromFile reads field from a JSON export, or treats the whole file as
// a bare hex or base64 value.
func loadKeyFromFile(filename, field string) ([]byte, error) {
	data, err := readInputFile(filename)
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err == nil {
		names := fieldAliases[field]
		if len(names) == 0 {
			names = []string{field}
		}
		encoding, _ := doc["encoding"].(string)
		for _, name := range names {
			if s, ok := doc[name].(string); ok {
				v, err := decodeString(s, OutputFormat(encoding))
				return v, errors.Wrapf(err, "field %s in %s", name, filename)
			}
		}
		return nil, errors.Errorf("%s has no %s field", filename, field)
	}

	v, err := decodeString(string(data), "")
	return v, errors.Wrapf(err, "reading %s", filename)
}

const checksumTag = "round5-cli key checksum"

// keyChecksum binds a secret key to its public key.
func keyChecksum(kappaBytes int, pk, sk []byte) string {
	return hex.EncodeToString(utils.HashWithTag(kappaBytes, checksumTag, 16, pk, sk))
}

// loadChecksum returns the checksum field of a JSON key pair export, or ""
// when the file has none.
func loadChecksum(filename string) (string, error) {
	data, err := readInputFile(filename)
	if err != nil {
		return "", err
	}
	var export KEMKeyPairExport
	if err := json.Unmarshal(data, &export); err != nil {
		return "", nil
	}
	return export.Checksum, nil
}

// writeOutput writes v as indented JSON to --output with owner-only
// permissions, or to the app writer when no file is given.
func writeOutput(c *cli.Context, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	return writeRaw(c, data)
}

func writeRaw(c *cli.Context, data []byte) error {
	filename := c.String("output")
	if filename == "" {
		_, err := fmt.Fprintln(c.App.Writer, string(data))
		return err
	}

	path, err := homedir.Expand(filename)
	if err != nil {
		return errors.Wrapf(err, "expanding %s", filename)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, "writing output file")
	}
	// umask may have widened the mode of a pre-existing file.
	return errors.Wrap(os.Chmod(path, 0600), "setting file permissions")
}
