package badgerstore

// BadgerDB key schema.
//
// The store uses namespaced prefixes to organize the different data types in
// a single keyspace. Separators are NUL bytes, which cannot appear in record
// hashes (UUIDs), owner IDs, or names validated by the namespace core.
//
//	record:<hash>                              → JSON-encoded Record
//	child:<ownerID>\x00<parentHash>\x00<name>  → record hash
//	acct:<accountID>\x00<hash>                 → size_bytes (8-byte big endian)
//	channel:<id>                               → JSON-encoded Channel
//	handle:<handle>                            → channel id
//
// The child index gives O(1) sibling lookups and prefix scans for listings;
// the acct index bounds quota aggregation to one account's records instead
// of a full table scan.

const (
	prefixRecord  = "record:"
	prefixChild   = "child:"
	prefixAccount = "acct:"
	prefixChannel = "channel:"
	prefixHandle  = "handle:"

	sep = "\x00"
)

func recordKey(hash string) []byte {
	return []byte(prefixRecord + hash)
}

func childKey(ownerID, parentHash, name string) []byte {
	return []byte(prefixChild + ownerID + sep + parentHash + sep + name)
}

func childPrefix(ownerID, parentHash string) []byte {
	return []byte(prefixChild + ownerID + sep + parentHash + sep)
}

func accountKey(accountID, hash string) []byte {
	return []byte(prefixAccount + accountID + sep + hash)
}

func accountPrefix(accountID string) []byte {
	return []byte(prefixAccount + accountID + sep)
}

func channelKey(id string) []byte {
	return []byte(prefixChannel + id)
}

func handleKey(handle string) []byte {
	return []byte(prefixHandle + handle)
}
