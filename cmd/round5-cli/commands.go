package main

import (
	"encoding/hex"
	"time"

	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/core"
	"github.com/BackendStack21/round5-go/kem"
	"github.com/BackendStack21/round5-go/matrix"
	"github.com/BackendStack21/round5-go/utils"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// loadParams resolves --params or --level.
func loadParams(c *cli.Context) (round5.Parameters, error) {
	if path := c.String("params"); path != "" {
		p, err := core.LoadParamsFile(path)
		return p, errors.Wrapf(err, "loading %s", path)
	}
	p, err := core.GetParams(round5.SecurityLevel(c.String("level")))
	return p, errors.Wrap(err, "resolving --level")
}

// fixedSeed returns --fixed-seed, or the canonical seed when it is unset.
func fixedSeed(c *cli.Context, params round5.Parameters) ([]byte, error) {
	s := c.String("fixed-seed")
	if s == "" {
		return matrix.CanonicalSeed(params.KappaBytes), nil
	}
	seed, err := hex.DecodeString(s)
	return seed, errors.Wrap(err, "decoding --fixed-seed")
}

// loadKEM builds the context for the command, generating the fixed matrix
// for tau = 1 parameter sets.
func loadKEM(c *cli.Context) (*kem.KEM, error) {
	log := loggerFrom(c)
	params, err := loadParams(c)
	if err != nil {
		return nil, err
	}
	k, err := kem.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "creating context")
	}

	if params.Tau == round5.TauFixed {
		seed, err := fixedSeed(c, params)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		if err := k.GenerateFixedMatrix(seed); err != nil {
			return nil, errors.Wrap(err, "generating fixed matrix")
		}
		log.Info().Str("params", params.Name).Dur("took", time.Since(start)).Msg("fixed matrix ready")
	} else if c.String("fixed-seed") != "" {
		log.Warn().Str("params", params.Name).Int("tau", params.Tau).Msg("--fixed-seed ignored: parameter set has no fixed matrix")
	}
	return k, nil
}

// loadSecretKey reads a secret key and, when the file is a key pair export
// carrying a checksum, verifies it against the embedded public key.
func loadSecretKey(c *cli.Context, k *kem.KEM) ([]byte, error) {
	path := c.String("secret-key")
	sk, err := loadKeyFromFile(path, "secret_key")
	if err != nil {
		return nil, err
	}
	want, err := loadChecksum(path)
	if err != nil || want == "" || len(sk) != k.SecretKeySize() {
		return sk, err
	}

	pk := sk[len(sk)-k.PublicKeySize():]
	got := keyChecksum(k.Params().KappaBytes, pk, sk)
	if !utils.ConstantTimeEqual([]byte(got), []byte(want)) {
		utils.Zeroize(sk)
		return nil, errors.Errorf("%s: key checksum mismatch", path)
	}
	return sk, nil
}

func keygenAction(c *cli.Context) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	k, err := loadKEM(c)
	if err != nil {
		return err
	}

	var kp *round5.KeyPair
	if s := c.String("seed"); s != "" {
		seed, err := hex.DecodeString(s)
		if err != nil {
			return errors.Wrap(err, "decoding --seed")
		}
		kp, err = k.GenerateKeyPairFromSeed(seed)
		if err != nil {
			return errors.Wrap(err, "key generation")
		}
		utils.Zeroize(seed)
	} else if kp, err = k.GenerateKeyPair(); err != nil {
		return errors.Wrap(err, "key generation")
	}

	loggerFrom(c).Debug().Int("pk_bytes", len(kp.PublicKey)).Int("sk_bytes", len(kp.SecretKey)).Msg("key pair generated")
	out := KEMKeyPairExport{
		Params:    k.Params().Name,
		Encoding:  string(format),
		PublicKey: encodeBytes(kp.PublicKey, format),
		SecretKey: encodeBytes(kp.SecretKey, format),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Checksum:  keyChecksum(k.Params().KappaBytes, kp.PublicKey, kp.SecretKey),
	}
	utils.Zeroize(kp.SecretKey)
	return writeOutput(c, out)
}

func encapsulateAction(c *cli.Context) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	k, err := loadKEM(c)
	if err != nil {
		return err
	}
	pk, err := loadKeyFromFile(c.String("public-key"), "public_key")
	if err != nil {
		return err
	}

	var res *round5.EncapsulationResult
	if s := c.String("message"); s != "" {
		m, err := hex.DecodeString(s)
		if err != nil {
			return errors.Wrap(err, "decoding --message")
		}
		res, err = k.EncapsulateDeterministic(pk, m)
		if err != nil {
			return errors.Wrap(err, "encapsulation")
		}
	} else if res, err = k.Encapsulate(pk); err != nil {
		return errors.Wrap(err, "encapsulation")
	}

	return writeOutput(c, EncapsulationExport{
		Params:       k.Params().Name,
		Encoding:     string(format),
		Ciphertext:   encodeBytes(res.Ciphertext, format),
		SharedSecret: encodeBytes(res.SharedSecret, format),
	})
}

func decapsulateAction(c *cli.Context) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	k, err := loadKEM(c)
	if err != nil {
		return err
	}
	sk, err := loadSecretKey(c, k)
	if err != nil {
		return err
	}
	defer utils.Zeroize(sk)
	ct, err := loadKeyFromFile(c.String("ciphertext"), "ciphertext")
	if err != nil {
		return err
	}

	ss, err := k.Decapsulate(sk, ct)
	if err != nil {
		return errors.Wrap(err, "decapsulation")
	}
	return writeOutput(c, DecapsulationExport{
		Params:       k.Params().Name,
		Encoding:     string(format),
		SharedSecret: encodeBytes(ss, format),
	})
}

func encryptAction(c *cli.Context) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}

	var plaintext []byte
	switch {
	case c.IsSet("message") && c.IsSet("input"):
		return errors.New("use only one of --message and --input")
	case c.IsSet("message"):
		plaintext = []byte(c.String("message"))
	case c.IsSet("input"):
		if plaintext, err = readInputFile(c.String("input")); err != nil {
			return err
		}
	default:
		return errors.New("one of --message or --input is required")
	}

	k, err := loadKEM(c)
	if err != nil {
		return err
	}
	pk, err := loadKeyFromFile(c.String("public-key"), "public_key")
	if err != nil {
		return err
	}

	em, err := k.Encrypt(pk, plaintext)
	if err != nil {
		return errors.Wrap(err, "encryption")
	}
	return writeOutput(c, EncryptedExport{
		Params:    k.Params().Name,
		Encoding:  string(format),
		Encrypted: encodeBytes(kem.SerializeEncryptedMessage(em), format),
	})
}

func decryptAction(c *cli.Context) error {
	k, err := loadKEM(c)
	if err != nil {
		return err
	}
	sk, err := loadSecretKey(c, k)
	if err != nil {
		return err
	}
	defer utils.Zeroize(sk)
	data, err := loadKeyFromFile(c.String("ciphertext"), "encrypted")
	if err != nil {
		return err
	}

	em, err := kem.DeserializeEncryptedMessage(data)
	if err != nil {
		return errors.Wrap(err, "parsing encrypted message")
	}
	plaintext, err := k.Decrypt(sk, em)
	if err != nil {
		return errors.Wrap(err, "decryption")
	}
	return writeRaw(c, plaintext)
}

func matrixAction(c *cli.Context) error {
	params, err := loadParams(c)
	if err != nil {
		return err
	}

	var seed []byte
	if s := c.String("seed"); s != "" {
		if seed, err = hex.DecodeString(s); err != nil {
			return errors.Wrap(err, "decoding --seed")
		}
	} else if seed, err = fixedSeed(c, params); err != nil {
		return err
	}

	var a []uint16
	if params.Tau == round5.TauFixed {
		var fixed matrix.Fixed
		if err := fixed.Init(seed, params); err != nil {
			return errors.Wrap(err, "generating fixed matrix")
		}
		a, err = fixed.Matrix()
	} else {
		a, err = matrix.GenerateRandom(seed, params)
	}
	if err != nil {
		return errors.Wrap(err, "generating matrix")
	}

	head := c.Int("head")
	if head < 0 || head > len(a) {
		head = len(a)
	}
	digest := utils.Hash(params.KappaBytes, params.KappaBytes, utils.PackBits(a, 16))
	return writeOutput(c, MatrixExport{
		Params:   params.Name,
		Tau:      params.Tau,
		Seed:     hex.EncodeToString(seed),
		Elements: len(a),
		Digest:   hex.EncodeToString(digest),
		Head:     a[:head],
	})
}

// ParamsExport is a parameter set with its derived encoding sizes.
type ParamsExport struct {
	round5.Parameters
	PublicKeySize    int `json:"public_key_size"`
	SecretKeySize    int `json:"secret_key_size"`
	CiphertextSize   int `json:"ciphertext_size"`
	SharedSecretSize int `json:"shared_secret_size"`
}

func paramsExport(p round5.Parameters) ParamsExport {
	return ParamsExport{
		Parameters:       p,
		PublicKeySize:    core.PublicKeySize(p),
		SecretKeySize:    core.SecretKeySize(p),
		CiphertextSize:   core.CiphertextSize(p),
		SharedSecretSize: core.SharedSecretSize(p),
	}
}

func paramsAction(c *cli.Context) error {
	if c.Bool("all") {
		var all []ParamsExport
		for _, level := range core.Levels() {
			p, err := core.GetParams(level)
			if err != nil {
				return err
			}
			all = append(all, paramsExport(p))
		}
		return writeOutput(c, all)
	}

	p, err := loadParams(c)
	if err != nil {
		return err
	}
	if c.Bool("yaml") {
		data, err := core.MarshalParamsYAML(p)
		if err != nil {
			return errors.Wrap(err, "encoding parameters")
		}
		return writeRaw(c, data)
	}
	return writeOutput(c, paramsExport(p))
}
