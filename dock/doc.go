/*
 * doc.go, part of dockeval.
 *
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

//Package dock implements communication with AutoDock Vina and Open Babel, used to
//score, minimize and dock ligands into a receptor.
//In order to use this part of the library you need the vina (1.2 or later) and
//obabel programs in your PATH, or to set their locations in the handles.
//Please cite the AutoDock Vina and Open Babel references if you use them.
package dock
