// Package i18n provides the English and Lithuanian message catalogs used for table
// headers, period labels and the placeholder texts of missing values.
package i18n
