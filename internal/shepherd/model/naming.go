package model

import "fmt"

// ServiceCanonicalName returns the deterministic name of svcTag within
// envTag: "{service-tag}-{env-tag}". It labels the service in status
// output; compose service keys and default hostnames use
// ContainerCanonicalName instead.
func ServiceCanonicalName(svcTag, envTag string) string {
	return fmt.Sprintf("%s-%s", svcTag, envTag)
}

// ContainerCanonicalName returns the deterministic compose service key
// for a container: "{container-tag}-{service-tag}-{env-tag}".
func ContainerCanonicalName(cntTag, svcTag, envTag string) string {
	return fmt.Sprintf("%s-%s-%s", cntTag, svcTag, envTag)
}
