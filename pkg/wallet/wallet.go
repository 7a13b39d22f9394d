// Package wallet holds the key handling primitives of the wallet: generation
// and import of secp256k1 accounts, address validation and the password based
// cypher used to protect private keys at rest.
package wallet
