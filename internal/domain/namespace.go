package domain

// Vector index namespaces. Each holds averaged tag embeddings of one semantic kind.
const (
	NamespaceSkills    = "skills"
	NamespaceFeatures  = "features"
	NamespaceJobTitles = "job_titles"
)

// Namespaces lists every namespace in query order.
var Namespaces = []string{NamespaceSkills, NamespaceFeatures, NamespaceJobTitles}
