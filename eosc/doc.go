// Package eosc writes resource profiles to the EOSC providers portal and
// reads its controlled vocabularies. Authentication uses an offline refresh
// token from the EOSC AAI; access tokens are short-lived and refreshed
// transparently when the portal answers 401.
package eosc
