/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

// Command tetode drives a tetode.Engine from a JSON scenario file.
package main

func main() {
	execute()
}
