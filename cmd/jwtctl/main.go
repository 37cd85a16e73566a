package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/pablobaxter/tink/internal/securemem"
	"github.com/pablobaxter/tink/jwt"
	"github.com/pablobaxter/tink/keyset"
	"github.com/pablobaxter/tink/primitiveset"
)

func main() {
	// ---- sign ----
	signCmd := flag.NewFlagSet("sign", flag.ExitOnError)
	signKeyID := signCmd.Uint("keyid", 1, "key id bound into the token's kid header")
	signRaw := signCmd.Bool("raw", false, "use a RAW key (no kid header)")
	signSalt := signCmd.String("salt", "jwtctl", "salt for the passphrase KDF")
	signIssuer := signCmd.String("issuer", "", "iss claim")
	signSubject := signCmd.String("subject", "", "sub claim")
	signAudience := signCmd.String("audience", "", "aud claim")
	signJTI := signCmd.String("jti", "", "jti claim")
	signTTL := signCmd.Duration("ttl", 0, "token lifetime; 0 means no expiration")

	// ---- verify ----
	verifyCmd := flag.NewFlagSet("verify", flag.ExitOnError)
	verifyKeyID := verifyCmd.Uint("keyid", 1, "key id the token's kid header must match")
	verifyRaw := verifyCmd.Bool("raw", false, "use a RAW key (no kid header)")
	verifySalt := verifyCmd.String("salt", "jwtctl", "salt for the passphrase KDF")
	verifyIssuer := verifyCmd.String("issuer", "", "expected iss claim")
	verifyAudience := verifyCmd.String("audience", "", "expected aud claim")
	verifySkew := verifyCmd.Duration("skew", 0, "allowed clock skew")

	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "sign":
		_ = signCmd.Parse(os.Args[2:])
		m, err := buildMAC(*signSalt, uint32(*signKeyID), *signRaw)
		dieIf(err)
		dieIf(cmdSign(m, *signIssuer, *signSubject, *signAudience, *signJTI, *signTTL))

	case "verify":
		_ = verifyCmd.Parse(os.Args[2:])
		if verifyCmd.NArg() != 1 {
			dieIf(fmt.Errorf("verify takes exactly one token argument"))
		}
		m, err := buildMAC(*verifySalt, uint32(*verifyKeyID), *verifyRaw)
		dieIf(err)
		dieIf(cmdVerify(m, verifyCmd.Arg(0), *verifyIssuer, *verifyAudience, *verifySkew))

	default:
		usage()
	}
}

func usage() {
	fmt.Print(`jwtctl commands:

  sign    --keyid N [--raw] [--issuer I --subject S --audience A --jti J --ttl 1h]
  verify  --keyid N [--raw] [--issuer I --audience A --skew 1m] <token>

Examples:
  jwtctl sign --keyid 42 --issuer me --ttl 1h
  jwtctl verify --keyid 42 --issuer me eyJraWQ...
`)
}

// buildMAC derives an HS256 key from a passphrase with argon2id and wraps it
// in a single-key set so sign and verify go through the keyset dispatch path.
func buildMAC(salt string, keyID uint32, raw bool) (jwt.MAC, error) {
	passphrase, err := promptSecret("Passphrase: ")
	if err != nil {
		return nil, err
	}
	defer securemem.Zero(passphrase)

	key := argon2.IDKey(passphrase, []byte(salt), 3, 128*1024, 4, 32)
	_ = securemem.Lock(key)
	defer func() {
		securemem.Zero(key)
		_ = securemem.Unlock(key)
	}()

	h, err := jwt.NewHMAC("HS256", key, nil)
	if err != nil {
		return nil, err
	}
	prefixType := keyset.Tink
	if raw {
		prefixType = keyset.Raw
	}
	set := primitiveset.New[jwt.MACWithKID]()
	entry, err := set.Add(h, keyset.Key{ID: keyID, Status: keyset.Enabled, PrefixType: prefixType})
	if err != nil {
		return nil, err
	}
	if err := set.SetPrimary(entry); err != nil {
		return nil, err
	}
	return jwt.NewMAC(set)
}

func cmdSign(m jwt.MAC, issuer, subject, audience, jti string, ttl time.Duration) error {
	opts := &jwt.RawJWTOptions{}
	if issuer != "" {
		opts.Issuer = &issuer
	}
	if subject != "" {
		opts.Subject = &subject
	}
	if audience != "" {
		opts.Audience = &audience
	}
	if jti != "" {
		opts.JWTID = &jti
	}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		opts.ExpiresAt = &exp
	} else {
		opts.WithoutExpiration = true
	}
	token, err := jwt.NewRawJWT(opts)
	if err != nil {
		return err
	}
	compact, err := m.ComputeMACAndEncode(token)
	if err != nil {
		return err
	}
	fmt.Println(compact)
	return nil
}

func cmdVerify(m jwt.MAC, compact, issuer, audience string, skew time.Duration) error {
	opts := &jwt.ValidatorOpts{
		AllowMissingExpiration: true,
		ClockSkew:              skew,
	}
	if issuer != "" {
		opts.ExpectedIssuer = &issuer
	} else {
		opts.IgnoreIssuer = true
	}
	if audience != "" {
		opts.ExpectedAudience = &audience
	} else {
		opts.IgnoreAudiences = true
	}
	validator, err := jwt.NewValidator(opts)
	if err != nil {
		return err
	}
	verified, err := m.VerifyMACAndDecode(compact, validator)
	if err != nil {
		return err
	}
	payload, err := verified.JSONPayload()
	if err != nil {
		return err
	}
	fmt.Println("token OK")
	fmt.Println(string(payload))
	return nil
}

func promptSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	br := bufio.NewReader(os.Stdin)
	secret, err := br.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	if len(secret) > 0 && secret[len(secret)-1] == '\n' {
		secret = secret[:len(secret)-1]
	}
	return secret, nil
}

func dieIf(err error) {
	if err != nil {
		log.Fatalf("jwtctl: %v", err)
	}
}
