package domain

// KeyPrefix namespaces every key paperdigest writes to the key-value store.
const KeyPrefix = "paperdigest:"
