/*
	Project: Darasa (ref: https://classroom.google.com/)
	Classrooms, assignments and live classes, answering from a local cache when the database is out of reach.
*/
package darasa
