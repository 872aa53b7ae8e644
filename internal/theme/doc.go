// Package theme provides the CSS used to style banners. Themes are looked
// up in the user's themes directory first, then among the bundled ones.
package theme
