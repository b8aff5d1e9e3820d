// Package bluecloud reads service entries from the Blue-Cloud catalogue,
// hosted on the D4Science infrastructure. Access is scoped per virtual
// research environment (VRE): a UMA token obtained for one VRE only reveals
// the services of that VRE, so a full synchronization iterates the known
// VREs and acquires one token each.
package bluecloud
