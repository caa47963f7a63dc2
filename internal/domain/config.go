package domain

// KeyPrefix namespaces every key talentrank writes to the vector store.
const KeyPrefix = "talentrank:"
