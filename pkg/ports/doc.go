/*
Package ports defines the interfaces between the navigation core and its collaborators.

# Key Interfaces

  - AlgorithmSource: resolves immutable algorithm definitions by id (see pkg/registry).
  - ResultCatalog: resolves result keys to display text (see pkg/catalog).
  - StatelessEngine: the per-request navigation core used by adapters.

The package also ships reusable contract suites (RunEngineContract,
RunResultCatalogContract) that any implementation can run from its tests.
*/
package ports
