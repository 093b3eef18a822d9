package ports

import "github.com/vaijsc/vision-ordering-ssms/internal/domain"

// ClusterLoader loads cluster definitions from a source (e.g., filesystem).
type ClusterLoader interface {
	LoadCluster(nameOrPath string) (domain.Cluster, error)
}

// ClusterCatalog lists the clusters known to a workspace.
type ClusterCatalog interface {
	ListClusters(root string) ([]domain.ClusterRef, error)
}
